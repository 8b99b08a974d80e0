package report

import (
	"context"
	"fmt"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

func (s *Service) RegisterBlock(ctx context.Context, key, referenceURL, description string) (domain.BlockRecord, error) {
	return s.blocks.Register(ctx, key, referenceURL, description)
}

// DeregisterBlock removes the block record for key. A key that resolves but
// is not blocked fails with ErrNotFound.
func (s *Service) DeregisterBlock(ctx context.Context, key string) (domain.BlockRecord, error) {
	rec, removed, err := s.blocks.Deregister(ctx, key)
	if err != nil {
		return domain.BlockRecord{}, err
	}
	if !removed {
		return domain.BlockRecord{}, fmt.Errorf("block record for %q: %w", key, errors.ErrNotFound)
	}
	return rec, nil
}

// BlockList renders one page of the block list. page is zero-based.
func (s *Service) BlockList(page int) *domain.ReportView {
	result := s.blocks.List(page)

	lines := make([]string, 0, len(result.Records))
	for _, rec := range result.Records {
		line := fmt.Sprintf("%s (%s) %s", rec.BungieName, rec.MembershipID, util.FormatKST(rec.Created(), "2006-01-02"))
		if rec.Description != "" {
			line += " | " + util.TruncateString(rec.Description, 50)
		}
		lines = append(lines, line)
	}

	return &domain.ReportView{
		Title:       "차단 목록",
		Description: fmt.Sprintf("총 %d명", result.Total),
		Lines:       lines,
		Footer:      fmt.Sprintf("%d / %d 페이지", result.Page+1, result.TotalPages),
		Page:        result.Page,
		TotalPages:  result.TotalPages,
	}
}

// History lists the most recent joins and leaves.
func (s *Service) History(ctx context.Context, limit int) (*domain.ReportView, error) {
	events, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		marker, verb := "🔵", "가입"
		if ev.Kind == domain.MembershipLeft {
			marker, verb = "🔴", "탈퇴"
		}
		name := ev.BungieName
		if name == "" {
			name = ev.DisplayName
		}
		lines = append(lines, fmt.Sprintf("%s %s %s (%s)", marker, verb, name, util.FormatKST(ev.DetectedAt, "2006-01-02 15:04")))
	}

	return &domain.ReportView{
		Title:      "최근 가입/탈퇴 기록",
		Lines:      lines,
		Page:       0,
		TotalPages: 1,
	}, nil
}
