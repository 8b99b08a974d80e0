// Package bot wires the Iris chat bridge to the command registry and hosts
// the reconciliation scheduler for the lifetime of the process.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/command"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/iris"
)

const commandTimeout = 60 * time.Second

// MessageSender posts text to a chat room.
type MessageSender interface {
	SendMessage(ctx context.Context, room, message string) error
}

// MessageSource pushes chat messages to a handler.
type MessageSource interface {
	OnMessage(handler iris.MessageHandler)
	Connect(ctx context.Context) error
	Disconnect() error
}

// Runner is a background loop with a blocking Stop.
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

type Dependencies struct {
	Logger         *zap.Logger
	Sender         MessageSender
	Source         MessageSource
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter
	Clan           command.ClanService
	Scheduler      Runner
	StartedAt      time.Time
	// Closers run in reverse order on Shutdown.
	Closers []func()
}

type Bot struct {
	deps       *Dependencies
	logger     *zap.Logger
	registry   *command.Registry
	dispatcher command.Dispatcher

	baseCtx context.Context
	wg      sync.WaitGroup
	once    sync.Once
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies must not be nil")
	}
	if deps.Sender == nil || deps.Source == nil {
		return nil, fmt.Errorf("bot requires a message sender and source")
	}
	if deps.MessageAdapter == nil || deps.Formatter == nil || deps.Clan == nil {
		return nil, fmt.Errorf("bot requires adapter, formatter and clan service")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	b := &Bot{
		deps:     deps,
		logger:   deps.Logger,
		registry: command.NewRegistry(),
		baseCtx:  context.Background(),
	}

	command.RegisterDefaults(b.registry, &command.Dependencies{
		Clan:        deps.Clan,
		Formatter:   deps.Formatter,
		SendMessage: b.send,
		SendError: func(room, message string) error {
			return b.send(room, deps.Formatter.FormatError(message))
		},
		StartedAt: deps.StartedAt,
		Logger:    deps.Logger,
	})
	b.dispatcher = command.NewSequentialDispatcher(b.registry)

	b.logger.Info("Commands registered", zap.Int("count", b.registry.Count()))
	return b, nil
}

// Start connects to the chat bridge, starts the scheduler and blocks until
// ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctx
	b.deps.Source.OnMessage(b.handleMessage)

	if err := b.deps.Source.Connect(ctx); err != nil {
		return fmt.Errorf("connect chat bridge: %w", err)
	}

	if b.deps.Scheduler != nil {
		b.deps.Scheduler.Start(ctx)
	}

	b.logger.Info("Bot started")
	<-ctx.Done()
	return nil
}

// Shutdown stops the scheduler, disconnects and waits for running commands
// until ctx expires.
func (b *Bot) Shutdown(ctx context.Context) error {
	var shutdownErr error
	b.once.Do(func() {
		done := make(chan struct{})
		go func() {
			if b.deps.Scheduler != nil {
				b.deps.Scheduler.Stop()
			}
			if err := b.deps.Source.Disconnect(); err != nil {
				b.logger.Warn("Disconnect failed", zap.Error(err))
			}
			b.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			shutdownErr = fmt.Errorf("shutdown: %w", ctx.Err())
		}

		for i := len(b.deps.Closers) - 1; i >= 0; i-- {
			b.deps.Closers[i]()
		}
	})
	return shutdownErr
}

func (b *Bot) handleMessage(message *iris.Message) {
	parsed := b.deps.MessageAdapter.ParseMessage(message)
	if parsed.Type == domain.CommandUnknown {
		return
	}

	cmdCtx := domain.NewCommandContext(message.Room, message.Room, message.SenderName(), parsed.RawMessage, true).
		WithReference(message.Reference())

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(b.baseCtx, commandTimeout)
		defer cancel()

		b.logger.Debug("Executing command",
			zap.String("command", parsed.Type.String()),
			zap.String("room", cmdCtx.Room),
			zap.String("sender", cmdCtx.Sender),
		)
		if _, err := b.dispatcher.Publish(ctx, cmdCtx, command.CommandEvent{Type: parsed.Type, Params: parsed.Params}); err != nil {
			b.logger.Error("Command dispatch failed",
				zap.String("command", parsed.Type.String()),
				zap.Error(err),
			)
		}
	}()
}

func (b *Bot) send(room, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return b.deps.Sender.SendMessage(ctx, room, message)
}

// Wait blocks until in-flight commands finish.
func (b *Bot) Wait() {
	b.wg.Wait()
}
