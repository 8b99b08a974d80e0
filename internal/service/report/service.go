// Package report answers the read-mostly chat queries on top of the roster
// snapshot and the registries.
package report

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/cache"
	"github.com/kapu/destiny-clan-bot-go/internal/service/history"
	"github.com/kapu/destiny-clan-bot-go/internal/service/reconcile"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/roster"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

// ErrNotClanMember is returned when a rest record is requested for a player
// outside the clan.
var ErrNotClanMember = stderrors.New("player is not a clan member")

// ActivityFetcher looks up a member's current activity.
type ActivityFetcher interface {
	FetchMemberActivity(ctx context.Context, membershipType domain.MembershipType, membershipID string, timeout time.Duration) (domain.ActivitySummary, error)
}

type Config struct {
	ActivityTimeout     time.Duration
	ActivityConcurrency int
	OfflineCutoffDays   int
	RosterViewTTL       time.Duration
}

type Service struct {
	tracker    *roster.Tracker
	alerts     *registry.AlertTargets
	rest       *registry.RestRecords
	blocks     *registry.BlockList
	resolver   registry.PlayerResolver
	activities ActivityFetcher
	activity   *cache.ActivityCache
	scheduler  *reconcile.Scheduler
	history    history.Log
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time

	viewGroup singleflight.Group
	viewMu    sync.Mutex
	view      domain.Roster
	viewAt    time.Time
}

type Dependencies struct {
	Tracker    *roster.Tracker
	Alerts     *registry.AlertTargets
	Rest       *registry.RestRecords
	Blocks     *registry.BlockList
	Resolver   registry.PlayerResolver
	Activities ActivityFetcher
	Activity   *cache.ActivityCache
	Scheduler  *reconcile.Scheduler
	History    history.Log
	Logger     *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ActivityTimeout <= 0 {
		cfg.ActivityTimeout = constants.APIConfig.ActivityTimeout
	}
	if cfg.ActivityConcurrency <= 0 {
		cfg.ActivityConcurrency = constants.ScheduleConfig.ActivityConcurrency
	}
	if cfg.OfflineCutoffDays <= 0 {
		cfg.OfflineCutoffDays = constants.ScheduleConfig.OfflineCutoffDays
	}
	if cfg.RosterViewTTL <= 0 {
		cfg.RosterViewTTL = constants.CacheTTL.RosterView
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Activity == nil {
		deps.Activity = cache.NewActivityCache(nil, 0, deps.Logger)
	}
	if deps.History == nil {
		deps.History = history.NoopLog{}
	}

	return &Service{
		tracker:    deps.Tracker,
		alerts:     deps.Alerts,
		rest:       deps.Rest,
		blocks:     deps.Blocks,
		resolver:   deps.Resolver,
		activities: deps.Activities,
		activity:   deps.Activity,
		scheduler:  deps.Scheduler,
		history:    deps.History,
		cfg:        cfg,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

func (s *Service) today() domain.Date {
	return domain.DateOf(util.ToKST(s.now()))
}

// liveRoster returns a recent roster for display. Concurrent callers share
// one fetch; results are reused for RosterViewTTL. When the fetch fails the
// stored snapshot is used instead.
func (s *Service) liveRoster(ctx context.Context) (domain.Roster, error) {
	s.viewMu.Lock()
	if s.view != nil && s.now().Sub(s.viewAt) < s.cfg.RosterViewTTL {
		view := s.view.Clone()
		s.viewMu.Unlock()
		return view, nil
	}
	s.viewMu.Unlock()

	v, err, _ := s.viewGroup.Do("roster", func() (any, error) {
		fetched, err := s.tracker.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.viewMu.Lock()
		s.view = fetched
		s.viewAt = s.now()
		s.viewMu.Unlock()
		return fetched, nil
	})
	if err != nil {
		snapshot := s.tracker.Snapshot().Current()
		if len(snapshot) == 0 {
			return nil, err
		}
		s.logger.Warn("Live roster fetch failed, using snapshot", zap.Error(err))
		return snapshot, nil
	}
	return v.(domain.Roster).Clone(), nil
}

// ToggleAlertTarget flips the channel's subscription and reports whether it
// is now subscribed.
func (s *Service) ToggleAlertTarget(channel domain.ChannelID) (bool, error) {
	return s.alerts.Toggle(channel)
}

func (s *Service) IsAlertTarget(channel domain.ChannelID) bool {
	return s.alerts.Contains(channel)
}

// RunReconciliationOnce runs a cycle now. It fails with
// reconcile.ErrCycleInFlight when one is already running.
func (s *Service) RunReconciliationOnce(ctx context.Context) (*reconcile.Result, error) {
	return s.scheduler.RunOnce(ctx)
}

// Info summarises the bot's view of the clan.
func (s *Service) Info() *domain.ReportView {
	members := s.tracker.Snapshot().Current()
	online := 0
	for _, m := range members {
		if m.IsOnline {
			online++
		}
	}

	lines := []string{
		fmt.Sprintf("클랜원: %d명 (접속 %d명)", len(members), online),
		fmt.Sprintf("알림 채널: %d개", len(s.alerts.List())),
		fmt.Sprintf("휴가자: %d명", len(s.rest.Active(s.today()))),
		fmt.Sprintf("차단 목록: %d명", s.blocks.Len()),
		fmt.Sprintf("점검 상태: %s", s.scheduler.State()),
	}

	if last, at, err := s.scheduler.LastResult(); !at.IsZero() {
		status := "성공"
		if err != nil {
			status = "실패"
		} else if last != nil && !last.Delta.Empty() {
			status = fmt.Sprintf("성공 (가입 %d, 탈퇴 %d)", len(last.Delta.Joined), len(last.Delta.Left))
		}
		lines = append(lines, fmt.Sprintf("마지막 점검: %s %s", util.FormatKST(at, "01-02 15:04"), status))
	}

	return &domain.ReportView{
		Title:      "클랜 정보",
		Lines:      lines,
		Page:       0,
		TotalPages: 1,
	}
}
