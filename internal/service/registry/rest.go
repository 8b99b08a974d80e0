package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/store"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

const restDocumentName = "rest_list"

// RestRecords tracks members excused from long offline reports.
type RestRecords struct {
	doc    *store.Document[rawRecords]
	logger *zap.Logger

	mu      sync.Mutex
	records map[string]domain.RestRecord
}

func NewRestRecords(path string, logger *zap.Logger) *RestRecords {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestRecords{
		doc:     store.NewDocument(path, emptyRecords, logger),
		logger:  logger,
		records: map[string]domain.RestRecord{},
	}
}

func validateRest(key string, rec *domain.RestRecord) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty membership id")
	}
	if rec.EndDate.IsZero() {
		return fmt.Errorf("missing end_time")
	}
	rec.MembershipID = key
	return nil
}

// Load reads the persisted records. Malformed records are dropped.
func (r *RestRecords) Load() error {
	raw, err := r.doc.Load()
	if err != nil {
		return err
	}
	records, dropped := decodeRecords(raw, validateRest, r.logger, restDocumentName)

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()

	r.logger.Info("Rest records loaded",
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped),
	)
	return nil
}

// Register upserts a record for member. The description is cut to its limit.
func (r *RestRecords) Register(member domain.MemberRecord, endDate domain.Date, referenceURL, description string) (domain.RestRecord, error) {
	rec := domain.RestRecord{
		MembershipID: member.MembershipID,
		BungieName:   member.BungieName(),
		DisplayName:  member.Name(),
		EndDate:      endDate,
		ReferenceURL: referenceURL,
		Description:  util.TruncateRunes(strings.TrimSpace(description), constants.StringLimits.RestDescription),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	next[rec.MembershipID] = rec
	if err := r.persistLocked(next); err != nil {
		return domain.RestRecord{}, err
	}

	r.logger.Info("Rest record registered",
		zap.String("membership_id", rec.MembershipID),
		zap.String("end_date", rec.EndDate.String()),
	)
	return rec, nil
}

// Deregister removes the record for membershipID. It reports whether a record
// existed; a missing record is not an error.
func (r *RestRecords) Deregister(membershipID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	_, existed := next[membershipID]
	delete(next, membershipID)
	if err := r.persistLocked(next); err != nil {
		return false, err
	}
	return existed, nil
}

// Reconcile drops records that ended before today or whose member left the
// roster, fills in missing names from the roster, and persists the result.
// It returns the surviving records ordered by end date.
func (r *RestRecords) Reconcile(current domain.Roster, today domain.Date) ([]domain.RestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]domain.RestRecord, len(r.records))
	purged := 0
	for id, rec := range r.records {
		if rec.ExpiredOn(today) {
			purged++
			continue
		}
		member, ok := current.Find(id)
		if !ok {
			purged++
			continue
		}
		if rec.BungieName == "" {
			rec.BungieName = member.BungieName()
		}
		if rec.DisplayName == "" {
			rec.DisplayName = member.Name()
		}
		next[id] = rec
	}

	if err := r.persistLocked(next); err != nil {
		return nil, err
	}
	if purged > 0 {
		r.logger.Info("Purged rest records", zap.Int("purged", purged), zap.Int("remaining", len(next)))
	}
	return sortedRest(next), nil
}

// List returns the records ordered by end date without reconciling.
func (r *RestRecords) List() []domain.RestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedRest(r.records)
}

// Active returns the records that have not expired on today, keyed by id.
func (r *RestRecords) Active(today domain.Date) map[string]domain.RestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.RestRecord, len(r.records))
	for id, rec := range r.records {
		if !rec.ExpiredOn(today) {
			out[id] = rec
		}
	}
	return out
}

func (r *RestRecords) cloneLocked() map[string]domain.RestRecord {
	next := make(map[string]domain.RestRecord, len(r.records)+1)
	for id, rec := range r.records {
		next[id] = rec
	}
	return next
}

func (r *RestRecords) persistLocked(next map[string]domain.RestRecord) error {
	raw, err := encodeRecords(next)
	if err != nil {
		return err
	}
	if err := r.doc.Save(raw); err != nil {
		return err
	}
	r.records = next
	return nil
}

func sortedRest(records map[string]domain.RestRecord) []domain.RestRecord {
	out := make([]domain.RestRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EndDate != out[j].EndDate {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		return out[i].MembershipID < out[j].MembershipID
	})
	return out
}
