package iris

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendMessagePostsReply(t *testing.T) {
	var got ReplyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reply", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	require.NoError(t, client.SendMessage(context.Background(), "room-1", "안녕"))

	assert.Equal(t, ReplyRequest{Type: "text", Room: "room-1", Data: "안녕"}, got)
}

func TestSendMessageReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, zap.NewNop()).SendMessage(context.Background(), "room-1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Config{Port: 3000})
	}))
	defer srv.Close()

	assert.True(t, NewClient(srv.URL, zap.NewNop()).Ping(context.Background()))
	assert.False(t, NewClient("http://127.0.0.1:1", zap.NewNop()).Ping(context.Background()))
}

func TestMessageReference(t *testing.T) {
	m := &Message{Room: "r1", JSON: &MessageJSON{LogID: "77"}}
	assert.Equal(t, "r1/77", m.Reference())
	assert.Empty(t, (&Message{Room: "r1"}).Reference())
	assert.Empty(t, (&Message{}).SenderName())
}

func TestWebSocketDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"$접속","room":"r1","sender":"kim"}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), 0, 10*time.Millisecond, zap.NewNop())

	received := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { received <- m })

	require.NoError(t, ws.Connect(context.Background()))
	defer ws.Disconnect()

	select {
	case m := <-received:
		assert.Equal(t, "$접속", m.Msg)
		assert.Equal(t, "kim", m.SenderName())
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.True(t, ws.IsConnected())
}

func TestWebSocketConnectFailure(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, time.Millisecond, zap.NewNop())
	require.Error(t, ws.Connect(context.Background()))
	assert.Equal(t, WSStateFailed, ws.State())
}
