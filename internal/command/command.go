package command

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/reconcile"
)

type Command interface {
	Name() domain.CommandType
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// ClanService is the query and registry surface the chat commands use.
type ClanService interface {
	Info() *domain.ReportView
	OnlineMembers(ctx context.Context) (*domain.ReportView, error)
	LongOffline(ctx context.Context, cutoffDays int) (*domain.ReportView, error)
	RegisterRest(ctx context.Context, query string, endDate domain.Date, referenceURL, description string) (domain.RestRecord, error)
	DeregisterRest(ctx context.Context, query string) (domain.RestRecord, error)
	RestList(ctx context.Context) (*domain.ReportView, error)
	RegisterBlock(ctx context.Context, key, referenceURL, description string) (domain.BlockRecord, error)
	DeregisterBlock(ctx context.Context, key string) (domain.BlockRecord, error)
	BlockList(page int) *domain.ReportView
	ToggleAlertTarget(channel domain.ChannelID) (bool, error)
	RunReconciliationOnce(ctx context.Context) (*reconcile.Result, error)
	History(ctx context.Context, limit int) (*domain.ReportView, error)
}

type Dependencies struct {
	Clan        ClanService
	Formatter   *adapter.ResponseFormatter
	SendMessage func(room, message string) error
	SendError   func(room, message string) error
	StartedAt   time.Time
	Now         func() time.Time
	Logger      *zap.Logger
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// reply sends err to the room as a user facing message and logs anything
// unexpected. notFound overrides the text for lookup misses.
func (d *Dependencies) reply(cmdCtx *domain.CommandContext, cmd domain.CommandType, err error, notFound string) error {
	msg, expected := describeError(err, notFound)
	if !expected {
		d.Logger.Error("Command failed",
			zap.String("command", cmd.String()),
			zap.String("room", cmdCtx.Room),
			zap.Error(err),
		)
	}
	return d.SendError(cmdCtx.Room, msg)
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func intParam(params map[string]any, key string, fallback int) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return fallback
}
