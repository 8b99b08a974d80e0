package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/command"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/iris"
)

type sentMessage struct {
	room, text string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, room, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{room, message})
	return f.err
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeSource struct {
	handler      iris.MessageHandler
	connectErr   error
	disconnected bool
}

func (f *fakeSource) OnMessage(h iris.MessageHandler) { f.handler = h }
func (f *fakeSource) Connect(context.Context) error  { return f.connectErr }
func (f *fakeSource) Disconnect() error              { f.disconnected = true; return nil }

type fakeRunner struct {
	started, stopped atomic.Bool
}

func (f *fakeRunner) Start(context.Context) { f.started.Store(true) }
func (f *fakeRunner) Stop()                 { f.stopped.Store(true) }

type fakeClan struct {
	command.ClanService
}

func (fakeClan) Info() *domain.ReportView {
	return &domain.ReportView{Title: "클랜 정보", Lines: []string{"클랜원: 3명 (접속 1명)"}}
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *fakeSource, *fakeRunner) {
	t.Helper()
	sender := &fakeSender{}
	source := &fakeSource{}
	runner := &fakeRunner{}

	b, err := NewBot(&Dependencies{
		Logger:         zap.NewNop(),
		Sender:         sender,
		Source:         source,
		MessageAdapter: adapter.NewMessageAdapter("$"),
		Formatter:      adapter.NewResponseFormatter("$", "Bot", 21),
		Clan:           fakeClan{},
		Scheduler:      runner,
	})
	require.NoError(t, err)
	return b, sender, source, runner
}

func TestBotRoutesCommands(t *testing.T) {
	b, sender, source, runner := newTestBot(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	require.Eventually(t, func() bool { return runner.started.Load() }, time.Second, 5*time.Millisecond)

	source.handler(&iris.Message{Msg: "$정보", Room: "room-1"})
	source.handler(&iris.Message{Msg: "그냥 대화", Room: "room-1"})
	b.Wait()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "room-1", msgs[0].room)
	assert.Contains(t, msgs[0].text, "클랜원: 3명 (접속 1명)")

	cancel()
	require.NoError(t, <-done)

	closed := false
	b.deps.Closers = append(b.deps.Closers, func() { closed = true })
	require.NoError(t, b.Shutdown(context.Background()))
	assert.True(t, runner.stopped.Load())
	assert.True(t, source.disconnected)
	assert.True(t, closed)
}

func TestBotStartFailsWhenBridgeUnavailable(t *testing.T) {
	b, _, source, runner := newTestBot(t)
	source.connectErr = errors.New("refused")

	err := b.Start(context.Background())
	require.Error(t, err)
	assert.False(t, runner.started.Load())
}

func TestNewBotValidatesDependencies(t *testing.T) {
	_, err := NewBot(nil)
	assert.Error(t, err)

	_, err = NewBot(&Dependencies{Sender: &fakeSender{}, Source: &fakeSource{}})
	assert.Error(t, err)
}

func TestNotifierFormatsNotification(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, adapter.NewResponseFormatter("$", "Bot", 21))

	require.NoError(t, n.Send(context.Background(), "room-9", domain.Notification{
		Title:  "차단 유저 재가입 경고",
		Fields: []domain.NotificationField{{Name: "차단 유저", Value: "⚠️ X#0001 (1)"}},
	}))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "room-9", msgs[0].room)
	assert.Equal(t, "📢 차단 유저 재가입 경고\n\n[차단 유저]\n⚠️ X#0001 (1)", msgs[0].text)
}
