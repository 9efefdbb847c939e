package relay

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketRelay(t *testing.T) {
	ctx := context.Background()
	settings := DefaultSettings()

	server := NewServer(settings, nil)
	ts := httptest.NewServer(server)
	defer ts.Close()
	defer server.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	a, err := Dial(ctx, url, settings, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, url, settings, nil)
	require.NoError(t, err)
	defer b.Close()

	var ra, rb recorder
	a.Subscribe(ra.record)
	b.Subscribe(rb.record)

	// Both peers must be registered before sending
	require.Eventually(t, func() bool {
		server.mu.Lock()
		defer server.mu.Unlock()
		return len(server.peers) == 2
	}, 2*time.Second, 10*time.Millisecond)

	details, _ := json.Marshal(domain.RenameDetails{OldName: "Old", NewName: "New"})
	msg := domain.Message{Identifier: "divider#42", Event: domain.EventRename, Details: details}
	require.NoError(t, a.Send(ctx, msg))

	require.Eventually(t, func() bool { return len(rb.messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := rb.messages()[0]
	assert.Equal(t, msg.Identifier, got.Identifier)
	assert.Equal(t, msg.Event, got.Event)
	assert.JSONEq(t, string(details), string(got.Details))

	// The sender never hears itself
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, ra.messages())
}

func peerCount(s *Server) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

func TestServer_DropsSilentPeer(t *testing.T) {
	settings := DefaultSettings()
	settings.ReadTimeout = 200 * time.Millisecond
	settings.PingInterval = 50 * time.Millisecond

	server := NewServer(settings, nil)
	ts := httptest.NewServer(server)
	defer ts.Close()
	defer server.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	// A connection that never reads never answers pings
	silent, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer silent.Close()

	live, err := Dial(context.Background(), url, settings, nil)
	require.NoError(t, err)
	defer live.Close()

	require.Eventually(t, func() bool { return peerCount(server) == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return peerCount(server) == 1 }, 2*time.Second, 20*time.Millisecond)

	// The answering peer outlives several read timeouts
	time.Sleep(4 * settings.ReadTimeout)
	assert.Equal(t, 1, peerCount(server))
}

func TestClient_SendAfterClose(t *testing.T) {
	ctx := context.Background()
	settings := DefaultSettings()

	server := NewServer(settings, nil)
	ts := httptest.NewServer(server)
	defer ts.Close()

	c, err := Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), settings, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = c.Send(ctx, domain.Message{Identifier: "x", Event: "delete"})
	assert.ErrorIs(t, err, domain.ErrChannelClosed)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/relay", DefaultSettings(), nil)
	assert.Error(t, err)
}
