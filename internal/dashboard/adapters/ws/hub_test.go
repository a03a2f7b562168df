package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/internal/dashboard/adapters/ws"
	"notesflow/internal/dashboard/ports/events"
	"notesflow/internal/dashboard/store"
	"notesflow/pkg/jwtauth"
	"notesflow/pkg/workflow"
)

const testSecret = "ws-test-secret"

func startHub(t *testing.T, origins []string) (*ws.Hub, *httptest.Server) {
	t.Helper()

	hub := ws.NewHub(nil, jwtauth.New(testSecret), time.Minute, origins)
	srv := httptest.NewServer(ws.NewServer("", hub).Handler)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func token(t *testing.T, userID string) string {
	t.Helper()

	tok, err := jwtauth.New(testSecret).GenerateAccessToken(workflow.Principal{
		UserID: userID,
		Role:   workflow.RoleUser,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

func wsURL(srv *httptest.Server, tok string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + ws.Path + "?token=" + tok
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *ws.Hub, userID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.Clients(userID) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_Publish(t *testing.T) {
	hub, srv := startHub(t, nil)

	first := dial(t, wsURL(srv, token(t, "user-1")), nil)
	second := dial(t, wsURL(srv, token(t, "user-1")), nil)
	other := dial(t, wsURL(srv, token(t, "user-2")), nil)
	waitClients(t, hub, "user-1", 2)
	waitClients(t, hub, "user-2", 1)

	hub.Publish(context.Background(), "user-1", events.ChangeEvent{
		Type:   events.TypeNotesChanged,
		Action: events.ActionCompleted,
		NoteID: "n1",
		Counts: store.Counts{Active: 2, Approved: 1},
	})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var got events.ChangeEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, events.TypeNotesChanged, got.Type)
		assert.Equal(t, events.ActionCompleted, got.Action)
		assert.Equal(t, "n1", got.NoteID)
		assert.Equal(t, store.Counts{Active: 2, Approved: 1}, got.Counts)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "другой пользователь не должен получать событие")
}

func TestHub_Unregister(t *testing.T) {
	hub, srv := startHub(t, nil)

	conn := dial(t, wsURL(srv, token(t, "user-1")), nil)
	waitClients(t, hub, "user-1", 1)

	require.NoError(t, conn.Close())
	waitClients(t, hub, "user-1", 0)

	assert.NotPanics(t, func() {
		hub.Publish(context.Background(), "user-1", events.ChangeEvent{Type: events.TypeNotesChanged})
	})
}

func TestHub_Auth(t *testing.T) {
	_, srv := startHub(t, nil)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + ws.Path

	tests := []struct {
		name string
		url  string
	}{
		{name: "no token", url: base},
		{name: "garbage token", url: base + "?token=garbage"},
		{name: "wrong secret", url: base + "?token=" + func() string {
			tok, err := jwtauth.New("other").GenerateAccessToken(workflow.Principal{UserID: "u", Role: workflow.RoleUser}, time.Hour)
			require.NoError(t, err)
			return tok
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(tt.url, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestHub_BearerHeader(t *testing.T) {
	hub, srv := startHub(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + ws.Path

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token(t, "user-3"))
	dial(t, url, header)

	waitClients(t, hub, "user-3", 1)
}

func TestHub_Origin(t *testing.T) {
	_, srv := startHub(t, []string{"http://localhost:5173"})
	url := wsURL(srv, token(t, "user-1"))

	t.Run("allowed", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://localhost:5173")
		dial(t, url, header)
	})

	t.Run("rejected", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://evil.example")
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestHub_NonPositivePingInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		hub := ws.NewHub(nil, jwtauth.New(testSecret), interval, nil)
		srv := httptest.NewServer(ws.NewServer("", hub).Handler)

		conn := dial(t, wsURL(srv, token(t, "user-1")), nil)
		waitClients(t, hub, "user-1", 1)

		hub.Publish(context.Background(), "user-1", events.ChangeEvent{Type: events.TypeNotesChanged, Action: events.ActionCreated})
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got events.ChangeEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, events.ActionCreated, got.Action)

		hub.Close()
		srv.Close()
	}
}

func TestHub_OnDisconnect(t *testing.T) {
	hub, srv := startHub(t, nil)

	type disconnect struct {
		userID    string
		remaining int
	}
	calls := make(chan disconnect, 2)
	hub.OnDisconnect(func(_ context.Context, userID string) {
		calls <- disconnect{userID: userID, remaining: hub.Clients(userID)}
	})

	first := dial(t, wsURL(srv, token(t, "user-1")), nil)
	second := dial(t, wsURL(srv, token(t, "user-1")), nil)
	waitClients(t, hub, "user-1", 2)

	require.NoError(t, first.Close())
	select {
	case got := <-calls:
		assert.Equal(t, disconnect{userID: "user-1", remaining: 1}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect hook was not called")
	}

	require.NoError(t, second.Close())
	select {
	case got := <-calls:
		assert.Equal(t, disconnect{userID: "user-1", remaining: 0}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect hook was not called")
	}
}
