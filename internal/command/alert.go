package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

type AlertToggleCommand struct {
	deps *Dependencies
}

func NewAlertToggleCommand(deps *Dependencies) *AlertToggleCommand {
	return &AlertToggleCommand{deps: deps}
}

func (c *AlertToggleCommand) Name() domain.CommandType {
	return domain.CommandAlertToggle
}

func (c *AlertToggleCommand) Description() string {
	return "이 방의 클랜원 변동 알림을 켜거나 끕니다"
}

func (c *AlertToggleCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	enabled, err := c.deps.Clan.ToggleAlertTarget(domain.ChannelID(cmdCtx.Room))
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}

	c.deps.Logger.Info("Alert target toggled",
		zap.String("room", cmdCtx.Room),
		zap.Bool("enabled", enabled),
	)
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatAlertToggled(enabled))
}

type CheckCommand struct {
	deps *Dependencies
}

func NewCheckCommand(deps *Dependencies) *CheckCommand {
	return &CheckCommand{deps: deps}
}

func (c *CheckCommand) Name() domain.CommandType {
	return domain.CommandCheck
}

func (c *CheckCommand) Description() string {
	return "클랜원 변동을 지금 점검합니다"
}

func (c *CheckCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	result, err := c.deps.Clan.RunReconciliationOnce(ctx)
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "")
	}

	delta := result.Delta
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatCheckResult(
		delta.ColdStart,
		len(delta.Current),
		len(delta.Joined),
		len(delta.Left),
		len(result.FailedTargets),
	))
}
