package command

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

// ErrUnknownCommand is returned when a command dispatch is attempted for an
// unregistered type.
var ErrUnknownCommand = errors.New("unknown command")

// Registry stores command handlers keyed by command type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.CommandType]Command
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[domain.CommandType]Command)}
}

// Register adds a handler. A later handler for the same type replaces the
// earlier one.
func (r *Registry) Register(handler Command) {
	if handler == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Name()] = handler
}

func (r *Registry) Execute(ctx context.Context, cmdCtx *domain.CommandContext, cmdType domain.CommandType, params map[string]any) error {
	if r == nil {
		return fmt.Errorf("command registry is nil")
	}

	r.mu.RLock()
	handler, ok := r.handlers[cmdType]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmdType)
	}

	return handler.Execute(ctx, cmdCtx, params)
}

// Count returns the number of registered command handlers.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// RegisterDefaults registers every chat command.
func RegisterDefaults(r *Registry, deps *Dependencies) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	for _, c := range []Command{
		NewInfoCommand(deps),
		NewUptimeCommand(deps),
		NewHelpCommand(deps),
		NewOnlineCommand(deps),
		NewOfflineCommand(deps),
		NewHistoryCommand(deps),
		NewRestAddCommand(deps),
		NewRestRemoveCommand(deps),
		NewRestListCommand(deps),
		NewBlockAddCommand(deps),
		NewBlockRemoveCommand(deps),
		NewBlockListCommand(deps),
		NewAlertToggleCommand(deps),
		NewCheckCommand(deps),
	} {
		r.Register(c)
	}
}
