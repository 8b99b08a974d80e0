package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/store"
)

type alertDocument struct {
	AlertTarget []domain.ChannelID `json:"alert_target"`
}

// AlertTargets is the set of channels subscribed to roster notifications.
type AlertTargets struct {
	doc    *store.Document[alertDocument]
	logger *zap.Logger

	mu      sync.Mutex
	targets []domain.ChannelID
}

func NewAlertTargets(path string, logger *zap.Logger) *AlertTargets {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertTargets{
		doc: store.NewDocument(path, func() alertDocument {
			return alertDocument{AlertTarget: []domain.ChannelID{}}
		}, logger),
		logger:  logger,
		targets: []domain.ChannelID{},
	}
}

func (a *AlertTargets) Load() error {
	loaded, err := a.doc.Load()
	if err != nil {
		return err
	}

	seen := make(map[domain.ChannelID]struct{}, len(loaded.AlertTarget))
	targets := make([]domain.ChannelID, 0, len(loaded.AlertTarget))
	for _, id := range loaded.AlertTarget {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	a.mu.Lock()
	a.targets = targets
	a.mu.Unlock()

	a.logger.Info("Alert targets loaded", zap.Int("targets", len(targets)))
	return nil
}

// Toggle adds the channel if absent and removes it if present. It returns
// true when the channel was added. The set is persisted on every call; if
// persistence fails the in-memory set is left unchanged.
func (a *AlertTargets) Toggle(channel domain.ChannelID) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]domain.ChannelID, 0, len(a.targets)+1)
	added := true
	for _, id := range a.targets {
		if id == channel {
			added = false
			continue
		}
		next = append(next, id)
	}
	if added {
		next = append(next, channel)
	}

	if err := a.doc.Save(alertDocument{AlertTarget: next}); err != nil {
		return false, err
	}
	a.targets = next

	a.logger.Info("Alert target toggled",
		zap.String("room", channel.String()),
		zap.Bool("added", added),
	)
	return added, nil
}

// List returns the registered channels in registration order.
func (a *AlertTargets) List() []domain.ChannelID {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ChannelID, len(a.targets))
	copy(out, a.targets)
	return out
}

func (a *AlertTargets) Contains(channel domain.ChannelID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.targets {
		if id == channel {
			return true
		}
	}
	return false
}
