package command

import (
	"context"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

const defaultHistoryLimit = 10

type OnlineCommand struct {
	deps *Dependencies
}

func NewOnlineCommand(deps *Dependencies) *OnlineCommand {
	return &OnlineCommand{deps: deps}
}

func (c *OnlineCommand) Name() domain.CommandType {
	return domain.CommandOnline
}

func (c *OnlineCommand) Description() string {
	return "접속 중인 클랜원을 표시합니다"
}

func (c *OnlineCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	view, err := c.deps.Clan.OnlineMembers(ctx)
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(view))
}

type OfflineCommand struct {
	deps *Dependencies
}

func NewOfflineCommand(deps *Dependencies) *OfflineCommand {
	return &OfflineCommand{deps: deps}
}

func (c *OfflineCommand) Name() domain.CommandType {
	return domain.CommandOffline
}

func (c *OfflineCommand) Description() string {
	return "장기 미접속 클랜원을 표시합니다"
}

func (c *OfflineCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	view, err := c.deps.Clan.LongOffline(ctx, intParam(params, "days", 0))
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(view))
}

type HistoryCommand struct {
	deps *Dependencies
}

func NewHistoryCommand(deps *Dependencies) *HistoryCommand {
	return &HistoryCommand{deps: deps}
}

func (c *HistoryCommand) Name() domain.CommandType {
	return domain.CommandHistory
}

func (c *HistoryCommand) Description() string {
	return "최근 가입/탈퇴 기록을 표시합니다"
}

func (c *HistoryCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	view, err := c.deps.Clan.History(ctx, intParam(params, "limit", defaultHistoryLimit))
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(view))
}
