package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

// UnknownActivityName replaces an activity that could not be fetched in time.
const UnknownActivityName = "알 수 없음"

// OnlineMembers lists members currently online with what they are playing.
// Activity lookups run concurrently; a slow or failed lookup degrades to a
// placeholder for that member only.
func (s *Service) OnlineMembers(ctx context.Context) (*domain.ReportView, error) {
	members, err := s.liveRoster(ctx)
	if err != nil {
		return nil, err
	}

	online := domain.Roster{}
	for _, m := range members {
		if m.IsOnline {
			online = append(online, m)
		}
	}

	summaries := s.fetchActivities(ctx, online)

	lines := make([]string, 0, len(online))
	for i, m := range online {
		lines = append(lines, fmt.Sprintf("🟢 %s - %s", m.BungieName(), summaries[i].ActivityName))
	}

	return &domain.ReportView{
		Title:       "접속 중인 클랜원",
		Description: fmt.Sprintf("%d명 접속 중", len(online)),
		Lines:       lines,
		Page:        0,
		TotalPages:  1,
	}, nil
}

func (s *Service) fetchActivities(ctx context.Context, members domain.Roster) []domain.ActivitySummary {
	results := make([]domain.ActivitySummary, len(members))
	var resultsMu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.cfg.ActivityConcurrency)
	for idx, m := range members {
		p.Go(func() {
			summary := s.memberActivity(ctx, m)
			resultsMu.Lock()
			results[idx] = summary
			resultsMu.Unlock()
		})
	}
	p.Wait()

	return results
}

func (s *Service) memberActivity(ctx context.Context, m domain.MemberRecord) domain.ActivitySummary {
	if cached, ok := s.activity.Get(ctx, m.MembershipID); ok {
		return cached
	}

	summary, err := s.activities.FetchMemberActivity(ctx, m.MembershipType, m.MembershipID, s.cfg.ActivityTimeout)
	if err != nil {
		s.logger.Debug("Activity lookup failed",
			zap.String("membership_id", m.MembershipID),
			zap.Error(err),
		)
		return domain.ActivitySummary{
			MembershipID: m.MembershipID,
			ActivityName: UnknownActivityName,
			Unknown:      true,
		}
	}

	summary.MembershipID = m.MembershipID
	s.activity.Put(ctx, summary)
	return summary
}
