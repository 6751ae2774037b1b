package ttlcache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-research-radar/internal/ttlcache"
)

func TestSetSeenDuplicate(t *testing.T) {
	set := ttlcache.NewSet(10, time.Minute)
	require.False(t, set.Contains("alpha"))
	set.Add("alpha")
	require.True(t, set.Contains("alpha"))
	require.Equal(t, 1, set.Len())
}

func TestSetTTLExpiry(t *testing.T) {
	set := ttlcache.NewSet(10, 20*time.Millisecond)
	set.Add("beta")
	time.Sleep(25 * time.Millisecond)
	require.False(t, set.Contains("beta"))
	require.Equal(t, 0, set.Len())
}

func TestCapacityEvictsOldest(t *testing.T) {
	set := ttlcache.NewSet(1, time.Minute)
	set.Add("first")
	set.Add("second")

	require.False(t, set.Contains("first"))
	require.True(t, set.Contains("second"))
}

func TestGetPutRemove(t *testing.T) {
	sessions := ttlcache.New[string](10, time.Minute)
	_, ok := sessions.Get("token")
	require.False(t, ok)

	sessions.Put("token", "alice")
	user, ok := sessions.Get("token")
	require.True(t, ok)
	require.Equal(t, "alice", user)

	sessions.Remove("token")
	_, ok = sessions.Get("token")
	require.False(t, ok)
}

func TestReinsertKeepsNewestEntry(t *testing.T) {
	set := ttlcache.NewSet(2, time.Minute)
	set.Add("a")
	set.Add("b")
	set.Add("a")
	set.Add("c")

	// "b" is the oldest live insertion and goes first.
	require.True(t, set.Contains("a"))
	require.False(t, set.Contains("b"))
	require.True(t, set.Contains("c"))
}
