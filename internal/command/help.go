package command

import (
	"context"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() domain.CommandType {
	return domain.CommandHelp
}

func (c *HelpCommand) Description() string {
	return "도움말을 표시합니다"
}

func (c *HelpCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatHelp())
}

type InfoCommand struct {
	deps *Dependencies
}

func NewInfoCommand(deps *Dependencies) *InfoCommand {
	return &InfoCommand{deps: deps}
}

func (c *InfoCommand) Name() domain.CommandType {
	return domain.CommandInfo
}

func (c *InfoCommand) Description() string {
	return "클랜과 봇 상태를 표시합니다"
}

func (c *InfoCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(c.deps.Clan.Info()))
}

type UptimeCommand struct {
	deps *Dependencies
}

func NewUptimeCommand(deps *Dependencies) *UptimeCommand {
	return &UptimeCommand{deps: deps}
}

func (c *UptimeCommand) Name() domain.CommandType {
	return domain.CommandUptime
}

func (c *UptimeCommand) Description() string {
	return "봇 실행 시간을 표시합니다"
}

func (c *UptimeCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUptime(c.deps.StartedAt, c.deps.now()))
}
