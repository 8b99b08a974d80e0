package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

// LongOffline lists members whose last online change is older than
// cutoffDays, oldest first. Members with an active rest record are left out
// and counted in the footer. A non-positive cutoff uses the configured
// default.
func (s *Service) LongOffline(ctx context.Context, cutoffDays int) (*domain.ReportView, error) {
	if cutoffDays <= 0 {
		cutoffDays = s.cfg.OfflineCutoffDays
	}

	members, err := s.liveRoster(ctx)
	if err != nil {
		return nil, err
	}

	resting, err := s.rest.Reconcile(members, s.today())
	if err != nil {
		return nil, err
	}
	exempt := make(map[string]struct{}, len(resting))
	for _, rec := range resting {
		exempt[rec.MembershipID] = struct{}{}
	}

	now := s.now()
	cutoff := now.Add(-time.Duration(cutoffDays) * 24 * time.Hour).Unix()

	stale := domain.Roster{}
	skipped := 0
	for _, m := range members {
		if m.IsOnline || m.LastOnlineChange >= cutoff {
			continue
		}
		if _, ok := exempt[m.MembershipID]; ok {
			skipped++
			continue
		}
		stale = append(stale, m)
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].LastOnlineChange < stale[j].LastOnlineChange
	})

	lines := make([]string, 0, len(stale))
	for _, m := range stale {
		last := m.LastOnline()
		lines = append(lines, fmt.Sprintf("%s - %d일 전 (%s)",
			m.BungieName(),
			util.DaysSince(last, now),
			util.FormatKST(last, "2006-01-02"),
		))
	}

	footer := ""
	if skipped > 0 {
		footer = fmt.Sprintf("휴가 중 제외 %d명", skipped)
	}

	return &domain.ReportView{
		Title:       "장기 미접속 클랜원",
		Description: fmt.Sprintf("%d일 이상 미접속 %d명", cutoffDays, len(stale)),
		Lines:       lines,
		Footer:      footer,
		Page:        0,
		TotalPages:  1,
	}, nil
}
