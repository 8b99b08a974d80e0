package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

type BlockAddCommand struct {
	deps *Dependencies
}

func NewBlockAddCommand(deps *Dependencies) *BlockAddCommand {
	return &BlockAddCommand{deps: deps}
}

func (c *BlockAddCommand) Name() domain.CommandType {
	return domain.CommandBlockAdd
}

func (c *BlockAddCommand) Description() string {
	return "차단 목록에 추가합니다"
}

func (c *BlockAddCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	key := stringParam(params, "key")
	if key == "" {
		return c.deps.SendError(cmdCtx.Room, "사용법: 차단 등록 [이름#코드 또는 ID] [사유]")
	}

	rec, err := c.deps.Clan.RegisterBlock(ctx, key, cmdCtx.Reference, stringParam(params, "description"))
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "'"+key+"' 플레이어를 찾을 수 없습니다.")
	}

	c.deps.Logger.Info("Block registered from chat",
		zap.String("room", cmdCtx.Room),
		zap.String("sender", cmdCtx.Sender),
		zap.String("membership_id", rec.MembershipID),
	)
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatBlockAdded(rec))
}

type BlockRemoveCommand struct {
	deps *Dependencies
}

func NewBlockRemoveCommand(deps *Dependencies) *BlockRemoveCommand {
	return &BlockRemoveCommand{deps: deps}
}

func (c *BlockRemoveCommand) Name() domain.CommandType {
	return domain.CommandBlockRemove
}

func (c *BlockRemoveCommand) Description() string {
	return "차단 목록에서 제거합니다"
}

func (c *BlockRemoveCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	key := stringParam(params, "key")
	if key == "" {
		return c.deps.SendError(cmdCtx.Room, "사용법: 차단 해제 [이름#코드 또는 ID]")
	}

	rec, err := c.deps.Clan.DeregisterBlock(ctx, key)
	if err != nil {
		return c.deps.reply(cmdCtx, c.Name(), err, "'"+key+"' 차단 기록이 없습니다.")
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatBlockRemoved(rec))
}

type BlockListCommand struct {
	deps *Dependencies
}

func NewBlockListCommand(deps *Dependencies) *BlockListCommand {
	return &BlockListCommand{deps: deps}
}

func (c *BlockListCommand) Name() domain.CommandType {
	return domain.CommandBlockList
}

func (c *BlockListCommand) Description() string {
	return "차단 목록을 표시합니다"
}

func (c *BlockListCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	view := c.deps.Clan.BlockList(intParam(params, "page", 0))
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatReport(view))
}
