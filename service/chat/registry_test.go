package chat

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SingleEntryPerUser(t *testing.T) {
	req := require.New(t)
	srv, _, _ := newTestServer(t)

	// Given the same user connects twice
	first := connect(srv, "alice", "user")
	second := connect(srv, "alice", "user")

	// Then only the newest connection is tracked
	req.Equal(1, srv.Registry().Len())
	got, online := srv.Registry().Lookup("alice")
	req.True(online)
	req.Same(second, got)
	req.NotSame(first, got)
}

func TestRegistry_StaleUnregisterIsIgnored(t *testing.T) {
	req := require.New(t)
	srv, _, _ := newTestServer(t)

	first := connect(srv, "alice", "user")
	second := connect(srv, "alice", "user")
	watcher := connect(srv, "bob", "user")
	// drain the online bursts before the interesting part
	recvEvent(t, watcher, EventUserOnline)

	// When the superseded connection disconnects late
	req.False(disconnect(srv, first))

	// Then the newer entry survives and nobody sees user:offline
	got, online := srv.Registry().Lookup("alice")
	req.True(online)
	req.Same(second, got)
	expectNoEvent(t, watcher, EventUserOffline, 100*time.Millisecond)

	// And a matching disconnect does remove the entry and announce it
	req.True(disconnect(srv, second))
	_, online = srv.Registry().Lookup("alice")
	req.False(online)
	data := recvEvent(t, watcher, EventUserOffline)
	req.Equal("alice", data["userId"])
	req.NotZero(data["lastSeen"])
}

func TestRegistry_OnlineBroadcastAndDurableMark(t *testing.T) {
	req := require.New(t)
	srv, _, users := newTestServer(t)

	watcher := connect(srv, "bob", "user")

	c := connect(srv, "alice", "user")
	data := recvEventMatch(t, watcher, EventUserOnline, func(d map[string]any) bool {
		return d["userId"] == "alice"
	})
	req.Equal("alice", data["userId"])
	req.NotZero(data["timestamp"])

	u, err := users.FindByID(testCtx(), "alice")
	req.NoError(err)
	req.True(u.IsOnline)
	req.NotNil(u.LastSeenAt)

	req.True(disconnect(srv, c))
	u, err = users.FindByID(testCtx(), "alice")
	req.NoError(err)
	req.False(u.IsOnline)
}

func TestRegistry_PresencePersistenceFailureIsSwallowed(t *testing.T) {
	req := require.New(t)
	srv, _, users := newTestServer(t)
	users.FailPresence = errors.New("users collection unavailable")

	// Register/unregister must complete despite the store failing
	c := connect(srv, "alice", "user")
	_, online := srv.Registry().Lookup("alice")
	req.True(online)
	req.True(disconnect(srv, c))
	_, online = srv.Registry().Lookup("alice")
	req.False(online)
}
