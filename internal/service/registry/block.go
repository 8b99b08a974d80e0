package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/store"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

const blockDocumentName = "block_list"

// ErrInvalidLookupKey is returned for keys that are neither "Name#1234" nor a
// numeric platform id.
var ErrInvalidLookupKey = stderrors.New("invalid lookup key")

// PlayerResolver looks up a player identity outside the clan roster. Both
// methods return (nil, nil) when nothing matches.
type PlayerResolver interface {
	SearchPlayer(ctx context.Context, bungieName string) (*domain.MemberRecord, error)
	ResolvePlatformCredential(ctx context.Context, credential string) (*domain.MemberRecord, error)
}

// BlockList stores flagged identities keyed by resolved membership id.
type BlockList struct {
	doc      *store.Document[rawRecords]
	resolver PlayerResolver
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	records map[string]domain.BlockRecord
}

func NewBlockList(path string, resolver PlayerResolver, logger *zap.Logger) *BlockList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockList{
		doc:      store.NewDocument(path, emptyRecords, logger),
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
		records:  map[string]domain.BlockRecord{},
	}
}

func validateBlock(key string, rec *domain.BlockRecord) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty membership id")
	}
	if rec.MembershipID != "" && rec.MembershipID != key {
		return fmt.Errorf("membership_id %q does not match key", rec.MembershipID)
	}
	rec.MembershipID = key
	return nil
}

func (b *BlockList) Load() error {
	raw, err := b.doc.Load()
	if err != nil {
		return err
	}
	records, dropped := decodeRecords(raw, validateBlock, b.logger, blockDocumentName)

	b.mu.Lock()
	b.records = records
	b.mu.Unlock()

	b.logger.Info("Block list loaded",
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped),
	)
	return nil
}

// Resolve maps a lookup key to a player. "Name#1234" goes through the Bungie
// name search, a numeric key through the platform credential lookup.
func (b *BlockList) Resolve(ctx context.Context, key string) (*domain.MemberRecord, error) {
	key = strings.TrimSpace(key)

	var (
		found *domain.MemberRecord
		err   error
	)
	switch {
	case util.IsNumeric(key):
		found, err = b.resolver.ResolvePlatformCredential(ctx, key)
	default:
		name, code, ok := util.SplitBungieName(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLookupKey, key)
		}
		found, err = b.resolver.SearchPlayer(ctx, util.FormatBungieName(name, code))
	}
	if err != nil {
		return nil, err
	}
	if found == nil || found.MembershipID == "" {
		return nil, fmt.Errorf("player %q: %w", key, errors.ErrNotFound)
	}
	return found, nil
}

// Register resolves key and stores a block record for the resolved player.
func (b *BlockList) Register(ctx context.Context, key, referenceURL, description string) (domain.BlockRecord, error) {
	player, err := b.Resolve(ctx, key)
	if err != nil {
		return domain.BlockRecord{}, err
	}

	rec := domain.BlockRecord{
		MembershipID:   player.MembershipID,
		BungieName:     player.BungieName(),
		MembershipType: player.MembershipType,
		CreatedAt:      b.now().Unix(),
		ReferenceURL:   referenceURL,
		Description:    util.TruncateRunes(strings.TrimSpace(description), constants.StringLimits.BlockDescription),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.cloneLocked()
	next[rec.MembershipID] = rec
	if err := b.persistLocked(next); err != nil {
		return domain.BlockRecord{}, err
	}

	b.logger.Info("Block record registered",
		zap.String("membership_id", rec.MembershipID),
		zap.String("bungie_name", rec.BungieName),
	)
	return rec, nil
}

// Deregister resolves key and removes the matching record. When the lookup
// fails for a reason other than a clean miss, or key is a stored id, the
// record is removed by its stored key or name instead. The boolean reports
// whether a record was removed.
func (b *BlockList) Deregister(ctx context.Context, key string) (domain.BlockRecord, bool, error) {
	key = strings.TrimSpace(key)

	if rec, ok := b.findStored(key); ok && util.IsNumeric(key) {
		return b.remove(rec.MembershipID)
	}

	player, err := b.Resolve(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) || stderrors.Is(err, ErrInvalidLookupKey) {
			return domain.BlockRecord{}, false, err
		}
		rec, ok := b.findStored(key)
		if !ok {
			return domain.BlockRecord{}, false, err
		}
		b.logger.Warn("Player lookup failed, removing block record by stored key",
			zap.String("membership_id", rec.MembershipID),
			zap.Error(err),
		)
		return b.remove(rec.MembershipID)
	}

	return b.remove(player.MembershipID)
}

func (b *BlockList) remove(membershipID string) (domain.BlockRecord, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[membershipID]
	if !ok {
		return domain.BlockRecord{}, false, nil
	}
	next := b.cloneLocked()
	delete(next, membershipID)
	if err := b.persistLocked(next); err != nil {
		return domain.BlockRecord{}, false, err
	}

	b.logger.Info("Block record removed", zap.String("membership_id", membershipID))
	return rec, true, nil
}

// findStored matches key against stored ids and Bungie names.
func (b *BlockList) findStored(key string) (domain.BlockRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rec, ok := b.records[key]; ok {
		return rec, true
	}
	q := util.Normalize(key)
	for _, rec := range b.records {
		if util.Normalize(rec.BungieName) == q {
			return rec, true
		}
	}
	return domain.BlockRecord{}, false
}

// List returns one page of records, oldest first. Pages are zero-based; an
// index past the end clamps to the last page and a negative index counts
// from the end.
func (b *BlockList) List(page int) domain.BlockPage {
	b.mu.Lock()
	all := sortedBlocks(b.records)
	b.mu.Unlock()

	perPage := constants.PaginationConfig.ItemsPerPage
	totalPages := util.Max(1, util.CeilDiv(len(all), perPage))

	if page < 0 {
		page = totalPages + page
	}
	page = util.Max(0, util.Min(page, totalPages-1))

	start := page * perPage
	end := util.Min(start+perPage, len(all))
	records := []domain.BlockRecord{}
	if start < end {
		records = append(records, all[start:end]...)
	}

	return domain.BlockPage{
		Records:    records,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(all),
	}
}

// Check returns the block records of any candidate, in candidate order.
func (b *BlockList) Check(candidates domain.Roster) []domain.BlockRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	matches := []domain.BlockRecord{}
	seen := make(map[string]struct{}, len(candidates))
	for _, m := range candidates {
		rec, ok := b.records[m.MembershipID]
		if !ok {
			continue
		}
		if _, dup := seen[m.MembershipID]; dup {
			continue
		}
		seen[m.MembershipID] = struct{}{}
		matches = append(matches, rec)
	}
	return matches
}

func (b *BlockList) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

func (b *BlockList) cloneLocked() map[string]domain.BlockRecord {
	next := make(map[string]domain.BlockRecord, len(b.records)+1)
	for id, rec := range b.records {
		next[id] = rec
	}
	return next
}

func (b *BlockList) persistLocked(next map[string]domain.BlockRecord) error {
	raw, err := encodeRecords(next)
	if err != nil {
		return err
	}
	if err := b.doc.Save(raw); err != nil {
		return err
	}
	b.records = next
	return nil
}

func sortedBlocks(records map[string]domain.BlockRecord) []domain.BlockRecord {
	out := make([]domain.BlockRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].MembershipID < out[j].MembershipID
	})
	return out
}
