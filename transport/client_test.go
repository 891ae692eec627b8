package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/quill/protocol"
)

// echoServer answers add_word with dictionary_updated and drops the
// connection on remove_word.
func echoServer(t *testing.T, conns *atomic.Int32) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns.Add(1)
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			m, err := protocol.Decode(data)
			if err != nil {
				return
			}
			switch v := m.(type) {
			case protocol.AddWord:
				out, _ := protocol.Encode(protocol.DictionaryUpdated{Success: true, Word: v.Word, Action: "added"})
				_ = ws.WriteMessage(websocket.TextMessage, out)
			case protocol.RemoveWord:
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func next(t *testing.T, c *Client) protocol.Message {
	t.Helper()
	select {
	case m, ok := <-c.Incoming():
		require.True(t, ok, "incoming closed")
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func waitStatus(t *testing.T, c *Client, status string) {
	t.Helper()
	for {
		m := next(t, c)
		if cs, ok := m.(protocol.ConnectionStatus); ok && cs.Status == status {
			return
		}
	}
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:1/ws"})
	err := c.Send(protocol.AddWord{Word: "quill"})
	require.True(t, errors.Is(err, ErrNotConnected), "err=%v", err)
}

func TestClient_RejectsInvalidBeforeSend(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:1/ws"})
	err := c.Send(protocol.AddWord{Word: "not a word"})
	require.ErrorIs(t, err, protocol.ErrInvalidWord)
}

func TestClient_RoundTripAndReconnect(t *testing.T) {
	var conns atomic.Int32
	srv := echoServer(t, &conns)

	c := New(Config{URL: wsURL(srv), InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitStatus(t, c, "connected")
	require.True(t, c.Connected())

	require.NoError(t, c.Send(protocol.AddWord{Word: "quill"}))
	m := next(t, c)
	upd, ok := m.(protocol.DictionaryUpdated)
	require.True(t, ok, "got %T", m)
	require.Equal(t, "quill", upd.Word)

	require.NoError(t, c.Send(protocol.RemoveWord{Word: "quill"}))
	waitStatus(t, c, "disconnected")
	waitStatus(t, c, "connected")
	require.GreaterOrEqual(t, conns.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	for range c.Incoming() {
	}
	require.False(t, c.Connected())
}
