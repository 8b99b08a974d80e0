package roster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

// Source fetches the live clan roster.
type Source interface {
	FetchGroupMembers(ctx context.Context, groupID string) (domain.Roster, error)
}

// Tracker runs fetch, diff and snapshot replacement as one step.
type Tracker struct {
	source   Source
	snapshot *SnapshotStore
	groupID  string
	logger   *zap.Logger
}

func NewTracker(source Source, snapshot *SnapshotStore, groupID string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		source:   source,
		snapshot: snapshot,
		groupID:  groupID,
		logger:   logger,
	}
}

func (t *Tracker) Snapshot() *SnapshotStore {
	return t.snapshot
}

// Fetch returns the live roster without touching the snapshot.
func (t *Tracker) Fetch(ctx context.Context) (domain.Roster, error) {
	members, err := t.source.FetchGroupMembers(ctx, t.groupID)
	if err != nil {
		return nil, err
	}
	return members.Dedupe(), nil
}

// Sync fetches the roster, diffs it against the snapshot and replaces the
// snapshot. A fetch failure leaves the snapshot as it was.
func (t *Tracker) Sync(ctx context.Context) (Delta, error) {
	fetched, err := t.Fetch(ctx)
	if err != nil {
		return Delta{}, fmt.Errorf("fetch group members: %w", err)
	}
	return t.Apply(fetched)
}

// Apply diffs an already fetched roster and replaces the snapshot with it.
func (t *Tracker) Apply(fetched domain.Roster) (Delta, error) {
	fetched = fetched.Dedupe()
	previous := t.snapshot.Current()
	joined, left := Diff(fetched, previous)

	if err := t.snapshot.Replace(fetched); err != nil {
		return Delta{}, fmt.Errorf("replace roster snapshot: %w", err)
	}

	delta := Delta{
		Previous:  previous,
		Current:   fetched.Clone(),
		Joined:    joined,
		Left:      left,
		ColdStart: len(previous) == 0,
	}

	if delta.ColdStart {
		t.logger.Info("Adopted roster on cold start", zap.Int("members", len(fetched)))
	} else {
		t.logger.Debug("Roster diffed",
			zap.Int("previous", len(previous)),
			zap.Int("current", len(fetched)),
			zap.Int("joined", len(joined)),
			zap.Int("left", len(left)),
		)
	}
	return delta, nil
}
