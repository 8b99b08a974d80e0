package roster

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/store"
)

// SnapshotStore holds the last known roster. Readers always see either the
// previous or the next roster in full.
type SnapshotStore struct {
	doc    *store.Document[domain.Roster]
	logger *zap.Logger

	mu      sync.RWMutex
	current domain.Roster
}

func NewSnapshotStore(path string, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{
		doc:     store.NewDocument(path, func() domain.Roster { return domain.Roster{} }, logger),
		logger:  logger,
		current: domain.Roster{},
	}
}

// Load reads the persisted snapshot into memory.
func (s *SnapshotStore) Load() error {
	loaded, err := s.doc.Load()
	if err != nil {
		return err
	}

	deduped := loaded.Dedupe()
	if len(deduped) != len(loaded) {
		s.logger.Warn("Dropped duplicate or empty ids from persisted roster",
			zap.Int("loaded", len(loaded)),
			zap.Int("kept", len(deduped)),
		)
	}

	s.mu.Lock()
	s.current = deduped
	s.mu.Unlock()

	s.logger.Info("Roster snapshot loaded", zap.Int("members", len(deduped)))
	return nil
}

// Current returns a copy of the snapshot.
func (s *SnapshotStore) Current() domain.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.current)
}

// Replace persists next and then swaps it in. On a persistence error the
// in-memory snapshot is left untouched.
func (s *SnapshotStore) Replace(next domain.Roster) error {
	deduped := next.Dedupe()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Save(deduped); err != nil {
		return err
	}
	s.current = deduped
	return nil
}
