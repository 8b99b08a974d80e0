// Package history keeps a log of detected joins and leaves.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/database"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// Schema creates the membership event table.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS membership_events (
		id            BIGSERIAL PRIMARY KEY,
		membership_id TEXT        NOT NULL,
		display_name  TEXT        NOT NULL DEFAULT '',
		bungie_name   TEXT        NOT NULL DEFAULT '',
		kind          TEXT        NOT NULL,
		detected_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS membership_events_detected_at_idx ON membership_events (detected_at DESC)`,
}

// Log records membership events and lists the most recent ones.
type Log interface {
	Record(ctx context.Context, events []domain.MembershipEvent) error
	Recent(ctx context.Context, limit int) ([]domain.MembershipEvent, error)
}

type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates the schema if needed and returns a Postgres backed log.
func NewRepository(ctx context.Context, postgres *database.PostgresService, logger *zap.Logger) (*Repository, error) {
	if err := postgres.Migrate(ctx, Schema...); err != nil {
		return nil, err
	}
	return &Repository{db: postgres.GetDB(), logger: logger}, nil
}

func (r *Repository) Record(ctx context.Context, events []domain.MembershipEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewServiceError("failed to begin history write", "history", "record", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO membership_events
		(membership_id, display_name, bungie_name, kind, detected_at)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		_ = tx.Rollback()
		return errors.NewServiceError("failed to prepare history insert", "history", "record", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, ev.MembershipID, ev.DisplayName, ev.BungieName, string(ev.Kind), ev.DetectedAt.UTC()); err != nil {
			_ = tx.Rollback()
			return errors.NewServiceError("failed to insert history event", "history", "record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewServiceError("failed to commit history", "history", "record", err)
	}

	r.logger.Debug("Membership events recorded", zap.Int("events", len(events)))
	return nil
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]domain.MembershipEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `SELECT membership_id, display_name, bungie_name, kind, detected_at
		FROM membership_events ORDER BY detected_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewServiceError("failed to query history", "history", "recent", err)
	}
	defer rows.Close()

	events := []domain.MembershipEvent{}
	for rows.Next() {
		var (
			ev   domain.MembershipEvent
			kind string
		)
		if err := rows.Scan(&ev.MembershipID, &ev.DisplayName, &ev.BungieName, &kind, &ev.DetectedAt); err != nil {
			return nil, errors.NewServiceError("failed to scan history row", "history", "recent", err)
		}
		ev.Kind = domain.MembershipEventKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return events, nil
}

// Events converts a roster delta into history events.
func Events(joined, left domain.Roster, at time.Time) []domain.MembershipEvent {
	events := make([]domain.MembershipEvent, 0, len(joined)+len(left))
	for _, m := range joined {
		events = append(events, domain.MembershipEvent{
			MembershipID: m.MembershipID,
			DisplayName:  m.Name(),
			BungieName:   m.BungieName(),
			Kind:         domain.MembershipJoined,
			DetectedAt:   at,
		})
	}
	for _, m := range left {
		events = append(events, domain.MembershipEvent{
			MembershipID: m.MembershipID,
			DisplayName:  m.Name(),
			BungieName:   m.BungieName(),
			Kind:         domain.MembershipLeft,
			DetectedAt:   at,
		})
	}
	return events
}

// NoopLog is used when Postgres is disabled.
type NoopLog struct{}

func (NoopLog) Record(context.Context, []domain.MembershipEvent) error { return nil }

func (NoopLog) Recent(context.Context, int) ([]domain.MembershipEvent, error) {
	return []domain.MembershipEvent{}, nil
}
