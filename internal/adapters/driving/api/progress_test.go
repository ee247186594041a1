package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func dialProgress(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/api/ws/progress", nil)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck,gosec
	return conn
}

func TestProgressHub_Broadcasts(t *testing.T) {
	hub := NewProgressHub(nil)
	srv := httptest.NewServer(NewServer(newFakeFolio().services(), Options{Progress: hub}).Handler())
	defer srv.Close()

	first := dialProgress(t, srv.URL)
	second := dialProgress(t, srv.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 5*time.Millisecond)

	ev := domain.ProgressEvent{Filename: "a.pdf", Index: 0, Completed: 1, Total: 2, Success: true}
	hub.Publish(ev)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got domain.ProgressEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "a.pdf", got.Filename)
		assert.Equal(t, 1, got.Completed)
		assert.True(t, got.Success)
	}
}

func TestProgressHub_ClientDisconnect(t *testing.T) {
	hub := NewProgressHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
	hub.Publish(domain.ProgressEvent{Filename: "late.pdf"})
}

func TestProgressHub_Close(t *testing.T) {
	hub := NewProgressHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec
	defer conn.Close() //nolint:errcheck
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, hub.Clients())

	late, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec
	defer late.Close() //nolint:errcheck
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestProgressHub_DropsForSlowClients(t *testing.T) {
	hub := NewProgressHub(nil)
	c := &progressClient{send: make(chan domain.ProgressEvent, 1)}
	require.True(t, hub.register(c))

	hub.Publish(domain.ProgressEvent{Filename: "one.pdf"})
	hub.Publish(domain.ProgressEvent{Filename: "two.pdf"})

	assert.Len(t, c.send, 1)
	assert.Equal(t, "one.pdf", (<-c.send).Filename)
	hub.unregister(c)
	hub.Publish(domain.ProgressEvent{Filename: "three.pdf"})
}
