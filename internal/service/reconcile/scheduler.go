// Package reconcile runs the periodic roster check and delivers the
// resulting notifications.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/history"
	"github.com/kapu/destiny-clan-bot-go/internal/service/notification"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/roster"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	apperrors "github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// ErrCycleInFlight is returned when a cycle is requested while another one
// is still running. The request is dropped, not queued.
var ErrCycleInFlight = errors.New("reconciliation cycle already in flight")

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseFetching  Phase = "fetching"
	PhaseDiffing   Phase = "diffing"
	PhaseNotifying Phase = "notifying"
)

// Notifier delivers one notification to one channel.
type Notifier interface {
	Send(ctx context.Context, target domain.ChannelID, n domain.Notification) error
}

// Result summarises one completed cycle.
type Result struct {
	CycleID       string
	StartedAt     time.Time
	Duration      time.Duration
	Delta         roster.Delta
	Blocked       []domain.BlockRecord
	Notifications int
	Targets       int
	FailedTargets []domain.ChannelID
}

type Config struct {
	Interval            time.Duration
	DeliveryConcurrency int
}

type Scheduler struct {
	tracker  *roster.Tracker
	alerts   *registry.AlertTargets
	rest     *registry.RestRecords
	blocks   *registry.BlockList
	builder  *notification.Builder
	notifier Notifier
	history  history.Log
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	running atomic.Bool
	phase   atomic.Value

	lastMu   sync.RWMutex
	last     *Result
	lastErr  error
	lastTime time.Time

	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewScheduler(
	tracker *roster.Tracker,
	alerts *registry.AlertTargets,
	rest *registry.RestRecords,
	blocks *registry.BlockList,
	builder *notification.Builder,
	notifier Notifier,
	historyLog history.Log,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = constants.ScheduleConfig.ReconcileInterval
	}
	if cfg.DeliveryConcurrency <= 0 {
		cfg.DeliveryConcurrency = constants.ScheduleConfig.DeliveryConcurrency
	}
	if historyLog == nil {
		historyLog = history.NoopLog{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		tracker:  tracker,
		alerts:   alerts,
		rest:     rest,
		blocks:   blocks,
		builder:  builder,
		notifier: notifier,
		history:  historyLog,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	s.phase.Store(PhaseIdle)
	return s
}

// Start runs one cycle immediately and then one per interval until ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Reconciliation scheduler started", zap.Duration("interval", s.cfg.Interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.trigger(ctx)
		for {
			select {
			case <-ticker.C:
				s.trigger(ctx)
			case <-s.stopCh:
				s.logger.Info("Reconciliation scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Reconciliation scheduler context cancelled")
				return
			}
		}
	}()
}

// Stop ends the ticker loop and waits for a cycle in flight to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) trigger(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.RunOnce(ctx); err != nil {
			if errors.Is(err, ErrCycleInFlight) {
				s.logger.Info("Previous reconciliation still running, skipping tick")
			}
		}
	}()
}

// State returns the phase of the current cycle.
func (s *Scheduler) State() Phase {
	return s.phase.Load().(Phase)
}

// LastResult returns the last finished cycle, when it ended, and its error.
func (s *Scheduler) LastResult() (*Result, time.Time, error) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last, s.lastTime, s.lastErr
}

// RunOnce runs a full cycle unless one is already in flight. The cycle is
// not cancelled by ctx once started.
func (s *Scheduler) RunOnce(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInFlight
	}
	defer s.running.Store(false)
	defer s.phase.Store(PhaseIdle)

	result, err := s.runCycle(context.WithoutCancel(ctx))

	s.lastMu.Lock()
	s.last, s.lastErr, s.lastTime = result, err, s.now()
	s.lastMu.Unlock()

	return result, err
}

func (s *Scheduler) runCycle(ctx context.Context) (*Result, error) {
	result := &Result{
		CycleID:   uuid.NewString(),
		StartedAt: s.now(),
	}
	logger := s.logger.With(zap.String("cycle_id", result.CycleID))

	s.phase.Store(PhaseFetching)
	fetched, err := s.tracker.Fetch(ctx)
	if err != nil {
		s.logFetchFailure(logger, err)
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	s.phase.Store(PhaseDiffing)
	delta, err := s.tracker.Apply(fetched)
	if err != nil {
		logger.Error("Roster diff failed", zap.Error(err))
		return nil, err
	}
	result.Delta = delta

	s.phase.Store(PhaseNotifying)
	if !delta.Empty() {
		logger.Info("Roster changed",
			zap.Int("joined", len(delta.Joined)),
			zap.Int("left", len(delta.Left)),
		)

		notifications := s.builder.RosterChange(len(delta.Previous), len(delta.Current), delta.Joined, delta.Left, result.StartedAt)
		result.Blocked = s.blocks.Check(delta.Joined)
		if len(result.Blocked) > 0 {
			logger.Warn("Blocked players rejoined", zap.Int("count", len(result.Blocked)))
			notifications = append(notifications, s.builder.BlockedRejoin(result.Blocked, delta.Joined, result.StartedAt)...)
		}
		result.Notifications = len(notifications)
		result.Targets, result.FailedTargets = s.deliver(ctx, logger, notifications)

		if err := s.history.Record(ctx, history.Events(delta.Joined, delta.Left, result.StartedAt)); err != nil {
			logger.Warn("Failed to record membership history", zap.Error(err))
		}
	}

	today := domain.DateOf(util.ToKST(s.now()))
	if _, err := s.rest.Reconcile(delta.Current, today); err != nil {
		logger.Warn("Failed to reconcile rest records", zap.Error(err))
	}

	result.Duration = s.now().Sub(result.StartedAt)
	logger.Info("Reconciliation cycle completed",
		zap.Int("members", len(delta.Current)),
		zap.Int("joined", len(delta.Joined)),
		zap.Int("left", len(delta.Left)),
		zap.Int("targets", result.Targets),
		zap.Int("failed_targets", len(result.FailedTargets)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// deliver sends every notification, in order, to each target. Targets are
// handled concurrently and a failing target never blocks the others.
func (s *Scheduler) deliver(ctx context.Context, logger *zap.Logger, notifications []domain.Notification) (int, []domain.ChannelID) {
	targets := s.alerts.List()
	if len(notifications) == 0 || len(targets) == 0 {
		return len(targets), []domain.ChannelID{}
	}

	var (
		failedMu sync.Mutex
		failed   = []domain.ChannelID{}
	)

	p := pool.New().WithMaxGoroutines(s.cfg.DeliveryConcurrency)
	for _, target := range targets {
		p.Go(func() {
			for i, n := range notifications {
				if err := s.notifier.Send(ctx, target, n); err != nil {
					logger.Warn("Failed to deliver notification",
						zap.String("room", target.String()),
						zap.Int("index", i),
						zap.Error(err),
					)
					failedMu.Lock()
					failed = append(failed, target)
					failedMu.Unlock()
					return
				}
			}
		})
	}
	p.Wait()

	return len(targets), failed
}

func (s *Scheduler) logFetchFailure(logger *zap.Logger, err error) {
	switch {
	case apperrors.IsAuth(err):
		logger.Error("Roster fetch rejected, check BUNGIE_API_KEY", zap.Error(err))
	case apperrors.IsRateLimited(err):
		logger.Warn("Roster fetch throttled, retrying next tick", zap.Error(err))
	default:
		logger.Warn("Roster fetch failed, retrying next tick", zap.Error(err))
	}
}
