package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/reconcile"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/report"
	"github.com/kapu/destiny-clan-bot-go/internal/service/roster"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

type fakeClan struct {
	err error

	offlineDays int
	historyN    int
	blockPage   int
	restQuery   string
	restEnd     domain.Date
	restRef     string
	blockKey    string
	toggled     []domain.ChannelID
	alertOn     bool
	result      *reconcile.Result
}

func (f *fakeClan) Info() *domain.ReportView { return &domain.ReportView{Title: "클랜 정보"} }

func (f *fakeClan) OnlineMembers(context.Context) (*domain.ReportView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ReportView{Title: "접속 중인 클랜원", Lines: []string{"🟢 A#0001 - 궤도"}}, nil
}

func (f *fakeClan) LongOffline(_ context.Context, days int) (*domain.ReportView, error) {
	f.offlineDays = days
	return &domain.ReportView{Title: "장기 미접속 클랜원"}, f.err
}

func (f *fakeClan) RegisterRest(_ context.Context, query string, end domain.Date, ref, _ string) (domain.RestRecord, error) {
	f.restQuery, f.restEnd, f.restRef = query, end, ref
	if f.err != nil {
		return domain.RestRecord{}, f.err
	}
	return domain.RestRecord{MembershipID: "1", BungieName: query, DisplayName: "A", EndDate: end}, nil
}

func (f *fakeClan) DeregisterRest(_ context.Context, query string) (domain.RestRecord, error) {
	f.restQuery = query
	return domain.RestRecord{MembershipID: "1", BungieName: query}, f.err
}

func (f *fakeClan) RestList(context.Context) (*domain.ReportView, error) {
	return &domain.ReportView{Title: "휴가 목록"}, f.err
}

func (f *fakeClan) RegisterBlock(_ context.Context, key, _, _ string) (domain.BlockRecord, error) {
	f.blockKey = key
	if f.err != nil {
		return domain.BlockRecord{}, f.err
	}
	return domain.BlockRecord{MembershipID: "7", BungieName: key}, nil
}

func (f *fakeClan) DeregisterBlock(_ context.Context, key string) (domain.BlockRecord, error) {
	f.blockKey = key
	if f.err != nil {
		return domain.BlockRecord{}, f.err
	}
	return domain.BlockRecord{MembershipID: "7", BungieName: key}, nil
}

func (f *fakeClan) BlockList(page int) *domain.ReportView {
	f.blockPage = page
	return &domain.ReportView{Title: "차단 목록"}
}

func (f *fakeClan) ToggleAlertTarget(ch domain.ChannelID) (bool, error) {
	f.toggled = append(f.toggled, ch)
	f.alertOn = !f.alertOn
	return f.alertOn, f.err
}

func (f *fakeClan) RunReconciliationOnce(context.Context) (*reconcile.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeClan) History(_ context.Context, limit int) (*domain.ReportView, error) {
	f.historyN = limit
	return &domain.ReportView{Title: "최근 가입/탈퇴 기록"}, f.err
}

type harness struct {
	clan     *fakeClan
	registry *Registry
	sent     []string
	errors   []string
}

func newHarness() *harness {
	h := &harness{clan: &fakeClan{}, registry: NewRegistry()}
	deps := &Dependencies{
		Clan:      h.clan,
		Formatter: adapter.NewResponseFormatter("$", "Bot", 21),
		SendMessage: func(room, message string) error {
			h.sent = append(h.sent, message)
			return nil
		},
		SendError: func(room, message string) error {
			h.errors = append(h.errors, message)
			return nil
		},
		StartedAt: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Now:       func() time.Time { return time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC) },
		Logger:    zap.NewNop(),
	}
	RegisterDefaults(h.registry, deps)
	return h
}

func (h *harness) run(t *testing.T, cmdType domain.CommandType, params map[string]any) {
	t.Helper()
	cmdCtx := domain.NewCommandContext("room-1", "clan", "kim", "", true).WithReference("room-1/99")
	require.NoError(t, h.registry.Execute(context.Background(), cmdCtx, cmdType, params))
}

func TestRegistryCoversEveryCommand(t *testing.T) {
	h := newHarness()
	assert.Equal(t, 14, h.registry.Count())

	err := h.registry.Execute(context.Background(), &domain.CommandContext{}, domain.CommandUnknown, nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestOnlineCommand(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandOnline, nil)

	require.Len(t, h.sent, 1)
	assert.Contains(t, h.sent[0], "🟢 A#0001 - 궤도")
}

func TestOfflineAndHistoryDefaults(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandOffline, map[string]any{})
	h.run(t, domain.CommandHistory, map[string]any{})

	assert.Equal(t, 0, h.clan.offlineDays)
	assert.Equal(t, defaultHistoryLimit, h.clan.historyN)

	h.run(t, domain.CommandOffline, map[string]any{"days": 30})
	assert.Equal(t, 30, h.clan.offlineDays)
}

func TestRestAddPassesReference(t *testing.T) {
	h := newHarness()
	end := domain.Date{Year: 2024, Month: 6, Day: 1}
	h.run(t, domain.CommandRestAdd, map[string]any{"query": "A#0001", "end_date": end})

	assert.Equal(t, "A#0001", h.clan.restQuery)
	assert.Equal(t, end, h.clan.restEnd)
	assert.Equal(t, "room-1/99", h.clan.restRef)
	require.Len(t, h.sent, 1)
	assert.Contains(t, h.sent[0], "2024-06-01까지")
}

func TestRestAddUsage(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandRestAdd, map[string]any{"query": "A#0001"})

	require.Len(t, h.errors, 1)
	assert.Contains(t, h.errors[0], "사용법")
	assert.Empty(t, h.clan.restQuery)
}

func TestErrorReplies(t *testing.T) {
	cases := []struct {
		name string
		err  error
		cmd  domain.CommandType
		want string
	}{
		{"not member", report.ErrNotClanMember, domain.CommandRestAdd, "클랜원이 아닙니다."},
		{"past date", errors.NewValidationError("휴가 종료일이 이미 지났습니다", "end_date", "2024-01-01"), domain.CommandRestAdd, "휴가 종료일이 이미 지났습니다"},
		{"rest missing", fmt.Errorf("x: %w", errors.ErrNotFound), domain.CommandRestRemove, "'A#0001' 휴가 기록이 없습니다."},
		{"block missing", fmt.Errorf("x: %w", errors.ErrNotFound), domain.CommandBlockRemove, "'A#0001' 차단 기록이 없습니다."},
		{"bad key", registry.ErrInvalidLookupKey, domain.CommandBlockAdd, "이름#코드 또는 숫자 ID를 입력해주세요."},
		{"in flight", reconcile.ErrCycleInFlight, domain.CommandCheck, "이미 점검이 진행 중입니다"},
		{"throttled", errors.NewUpstreamError(errors.UpstreamRateLimited, "throttled", 200, nil), domain.CommandOnline, "요청 한도"},
		{"unexpected", fmt.Errorf("disk full"), domain.CommandAlertToggle, "요청을 처리하지 못했습니다."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.clan.err = tc.err
			h.run(t, tc.cmd, map[string]any{
				"query":    "A#0001",
				"key":      "A#0001",
				"end_date": domain.Date{Year: 2024, Month: 6, Day: 1},
			})

			require.Len(t, h.errors, 1)
			assert.Contains(t, h.errors[0], tc.want)
			assert.Empty(t, h.sent)
		})
	}
}

func TestBlockListPage(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandBlockList, map[string]any{"page": 2})
	assert.Equal(t, 2, h.clan.blockPage)
}

func TestAlertToggleUsesRoom(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandAlertToggle, nil)
	h.run(t, domain.CommandAlertToggle, nil)

	assert.Equal(t, []domain.ChannelID{"room-1", "room-1"}, h.clan.toggled)
	require.Len(t, h.sent, 2)
	assert.Contains(t, h.sent[0], "🔔")
	assert.Contains(t, h.sent[1], "🔕")
}

func TestCheckCommandSummarisesResult(t *testing.T) {
	h := newHarness()
	h.clan.result = &reconcile.Result{Delta: roster.Delta{
		Current: domain.Roster{{MembershipID: "1"}, {MembershipID: "2"}},
		Joined:  domain.Roster{{MembershipID: "2"}},
	}}
	h.run(t, domain.CommandCheck, nil)

	require.Len(t, h.sent, 1)
	assert.Contains(t, h.sent[0], "가입 1명, 탈퇴 0명 (클랜원 2명)")
}

func TestUptimeAndHelp(t *testing.T) {
	h := newHarness()
	h.run(t, domain.CommandUptime, nil)
	h.run(t, domain.CommandHelp, nil)

	require.Len(t, h.sent, 2)
	assert.Contains(t, h.sent[0], "2시간 0분")
	assert.Contains(t, h.sent[1], "$휴가 등록")
}

func TestDispatcherSkipsUnknown(t *testing.T) {
	h := newHarness()
	d := NewSequentialDispatcher(h.registry)

	n, err := d.Publish(context.Background(), &domain.CommandContext{Room: "room-1"},
		CommandEvent{Type: domain.CommandUnknown},
		CommandEvent{Type: domain.CommandInfo},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, h.sent, 1)
}
