package iris

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

type MessageHandler func(message *Message)

type StateHandler func(state WebSocketState)

// WebSocket receives chat events from Iris and reconnects on read failures
// until maxReconnectAttempts consecutive dials have failed.
type WebSocket struct {
	wsURL                string
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	state     WebSocketState
	onMessage MessageHandler
	onState   StateHandler

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWebSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration, logger *zap.Logger) *WebSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocket{
		wsURL:                wsURL,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		logger:               logger,
		state:                WSStateDisconnected,
		stopCh:               make(chan struct{}),
	}
}

// OnMessage sets the handler for incoming messages. Handlers run on the
// reader goroutine.
func (ws *WebSocket) OnMessage(handler MessageHandler) {
	ws.mu.Lock()
	ws.onMessage = handler
	ws.mu.Unlock()
}

func (ws *WebSocket) OnStateChange(handler StateHandler) {
	ws.mu.Lock()
	ws.onState = handler
	ws.mu.Unlock()
}

// Connect dials once and starts the reader. Later disconnects are retried in
// the background.
func (ws *WebSocket) Connect(ctx context.Context) error {
	if err := ws.dial(ctx); err != nil {
		ws.setState(WSStateFailed)
		return err
	}

	ws.wg.Add(1)
	go ws.run(ctx)
	return nil
}

func (ws *WebSocket) dial(ctx context.Context) error {
	ws.setState(WSStateConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, ws.wsURL, nil)
	if err != nil {
		ws.logger.Warn("WebSocket dial failed", zap.String("url", ws.wsURL), zap.Error(err))
		return err
	}

	ws.mu.Lock()
	ws.conn = conn
	ws.mu.Unlock()
	ws.setState(WSStateConnected)
	ws.logger.Info("WebSocket connected", zap.String("url", ws.wsURL))
	return nil
}

func (ws *WebSocket) run(ctx context.Context) {
	defer ws.wg.Done()
	defer ws.logger.Info("WebSocket listener stopped")

	for {
		ws.listen()

		if ws.stopped(ctx) {
			return
		}
		ws.setState(WSStateDisconnected)
		if !ws.reconnect(ctx) {
			ws.setState(WSStateFailed)
			return
		}
	}
}

func (ws *WebSocket) listen() {
	ws.mu.Lock()
	conn := ws.conn
	ws.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ws.stopCh:
			default:
				ws.logger.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}
		ws.handleMessage(data)
	}
}

func (ws *WebSocket) reconnect(ctx context.Context) bool {
	for attempt := 1; attempt <= ws.maxReconnectAttempts; attempt++ {
		ws.setState(WSStateReconnecting)
		ws.logger.Info("Scheduling reconnect",
			zap.Int("attempt", attempt),
			zap.Int("max", ws.maxReconnectAttempts),
			zap.Duration("delay", ws.reconnectDelay),
		)

		timer := time.NewTimer(ws.reconnectDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-ws.stopCh:
			timer.Stop()
			return false
		}

		if err := ws.dial(ctx); err == nil {
			return true
		}
	}

	ws.logger.Error("Max reconnect attempts reached", zap.Int("attempts", ws.maxReconnectAttempts))
	return false
}

func (ws *WebSocket) stopped(ctx context.Context) bool {
	select {
	case <-ws.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (ws *WebSocket) handleMessage(data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		ws.logger.Warn("Failed to parse message",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), 200)),
		)
		return
	}

	ws.mu.Lock()
	handler := ws.onMessage
	ws.mu.Unlock()

	if handler != nil {
		handler(&message)
	}
}

func (ws *WebSocket) setState(next WebSocketState) {
	ws.mu.Lock()
	prev := ws.state
	ws.state = next
	handler := ws.onState
	ws.mu.Unlock()

	if prev == next {
		return
	}
	ws.logger.Debug("WebSocket state changed",
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
	if handler != nil {
		handler(next)
	}
}

func (ws *WebSocket) State() WebSocketState {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.state
}

func (ws *WebSocket) IsConnected() bool {
	return ws.State() == WSStateConnected
}

// Disconnect closes the connection and waits briefly for the listener.
func (ws *WebSocket) Disconnect() error {
	ws.stopOnce.Do(func() { close(ws.stopCh) })

	ws.mu.Lock()
	conn := ws.conn
	ws.conn = nil
	ws.mu.Unlock()

	var closeErr error
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		closeErr = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		ws.logger.Warn("Timeout waiting for listener to stop")
	}

	ws.setState(WSStateDisconnected)
	return closeErr
}
