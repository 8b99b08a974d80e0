package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

type RestAddCommand struct {
	deps *Dependencies
}

func NewRestAddCommand(deps *Dependencies) *RestAddCommand {
	return &RestAddCommand{deps: deps}
}

func (c *RestAddCommand) Name() domain.CommandType {
	return domain.CommandRestAdd
}

func (c *RestAddCommand) Description() string {
	return "휴가를 등록합니다"
}

func (c *RestAddCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := stringParam(params, "query")
	endDate, hasDate := params["end_date"].(domain.Date)
	if query == "" || !hasDate {
		return c.deps.SendError(cmdCtx.Room, "사용법: 휴가 등록 [이름#코드] [YYYY-MM-DD] [사유]")
	}

	rec, err := c.deps.Clan.RegisterRest(ctx, query, endDate, cmdCtx.Reference, stringParam(params, "description"))
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "'"+query+"' 플레이어를 찾을 수 없습니다.")
	}

	c.deps.Logger.Info("Rest registered from chat",
		zap.String("room", cmdCtx.Room),
		zap.String("sender", cmdCtx.Sender),
		zap.String("membership_id", rec.MembershipID),
	)
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRestAdded(rec))
}

type RestRemoveCommand struct {
	deps *Dependencies
}

func NewRestRemoveCommand(deps *Dependencies) *RestRemoveCommand {
	return &RestRemoveCommand{deps: deps}
}

func (c *RestRemoveCommand) Name() domain.CommandType {
	return domain.CommandRestRemove
}

func (c *RestRemoveCommand) Description() string {
	return "휴가를 해제합니다"
}

func (c *RestRemoveCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := stringParam(params, "query")
	if query == "" {
		return c.deps.SendError(cmdCtx.Room, "사용법: 휴가 해제 [이름#코드]")
	}

	rec, err := c.deps.Clan.DeregisterRest(ctx, query)
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "'"+query+"' 휴가 기록이 없습니다.")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRestRemoved(rec))
}

type RestListCommand struct {
	deps *Dependencies
}

func NewRestListCommand(deps *Dependencies) *RestListCommand {
	return &RestListCommand{deps: deps}
}

func (c *RestListCommand) Name() domain.CommandType {
	return domain.CommandRestList
}

func (c *RestListCommand) Description() string {
	return "휴가 목록을 표시합니다"
}

func (c *RestListCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	view, err := c.deps.Clan.RestList(ctx)
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(view))
}
