package feedcache

import (
	"sync"
	"testing"
	"time"

	"liseplanning/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Location() *time.Location {
	return time.UTC
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// cheap parameters keep the tests fast, the proof logic is the same
var testParams = HashParams{Time: 1, Memory: 64, Threads: 1, KeyLen: 32}

func newTestCache() (*Cache[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 28, 8, 0, 0, 0, time.UTC)}
	return NewCache[string](clock, telemetry.SlogAPI{}, Options{HashParams: testParams}), clock
}

func TestGetWithinTTL(t *testing.T) {
	cache, clock := newTestCache()
	cache.Put("alice", "secret", []byte("BEGIN:VCALENDAR"))

	clock.Advance(TTL - time.Second)
	first, ok := cache.Get("alice", "secret")
	require.True(t, ok)
	second, ok := cache.Get("alice", "secret")
	require.True(t, ok)
	require.Equal(t, first, second)
	require.Equal(t, []byte("BEGIN:VCALENDAR"), first)
}

func TestGetAfterTTL(t *testing.T) {
	cache, clock := newTestCache()
	cache.Put("alice", "secret", []byte("feed"))

	clock.Advance(TTL + time.Second)
	_, ok := cache.Get("alice", "secret")
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())
}

func TestGetWrongPassword(t *testing.T) {
	cache, _ := newTestCache()
	cache.Put("alice", "secret", []byte("feed"))

	_, ok := cache.Get("alice", "guess")
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())

	// the right password does not bring the entry back
	_, ok = cache.Get("alice", "secret")
	require.False(t, ok)
}

func TestGetMissingKey(t *testing.T) {
	cache, _ := newTestCache()
	cache.Put("alice", "secret", []byte("feed"))

	_, ok := cache.Get("bob", "secret")
	require.False(t, ok)
	require.Equal(t, 1, cache.Len())
}

func TestCopies(t *testing.T) {
	cache, _ := newTestCache()
	feed := []byte("feed")
	cache.Put("alice", "secret", feed)
	feed[0] = 'X'

	out, ok := cache.Get("alice", "secret")
	require.True(t, ok)
	require.Equal(t, []byte("feed"), out)

	out[0] = 'Y'
	again, ok := cache.Get("alice", "secret")
	require.True(t, ok)
	require.Equal(t, []byte("feed"), again)
}

func TestPutReplaces(t *testing.T) {
	cache, _ := newTestCache()
	cache.Put("alice", "old", []byte("first"))
	cache.Put("alice", "new", []byte("second"))

	out, ok := cache.Get("alice", "new")
	require.True(t, ok)
	require.Equal(t, []byte("second"), out)
	require.Equal(t, 1, cache.Len())
}

func TestSaltsDiffer(t *testing.T) {
	cache, _ := newTestCache()
	cache.Put("alice", "secret", []byte("a"))
	cache.Put("bob", "secret", []byte("b"))

	cache.mu.Lock()
	defer cache.mu.Unlock()
	require.NotEqual(t, cache.entries["alice"].proof.salt, cache.entries["bob"].proof.salt)
	require.NotEqual(t, cache.entries["alice"].proof.hash, cache.entries["bob"].proof.hash)
}

func TestPrune(t *testing.T) {
	cache, clock := newTestCache()
	cache.Put("alice", "secret", []byte("a"))
	clock.Advance(6 * time.Minute)
	cache.Put("bob", "secret", []byte("b"))
	clock.Advance(5 * time.Minute)

	require.Equal(t, 1, cache.Prune())
	require.Equal(t, 1, cache.Len())
	_, ok := cache.Get("bob", "secret")
	require.True(t, ok)
}

type variantKey struct {
	username  string
	formatted bool
}

func TestStructKeysDoNotAlias(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 28, 8, 0, 0, 0, time.UTC)}
	cache := NewCache[variantKey](clock, telemetry.SlogAPI{}, Options{HashParams: testParams})

	cache.Put(variantKey{username: "alice", formatted: true}, "secret", []byte("alice formatted"))

	_, ok := cache.Get(variantKey{username: "alice#formatted"}, "guess")
	require.False(t, ok)

	out, ok := cache.Get(variantKey{username: "alice", formatted: true}, "secret")
	require.True(t, ok)
	require.Equal(t, []byte("alice formatted"), out)
}

func TestConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Put("alice", "secret", []byte("feed"))
			out, ok := cache.Get("alice", "secret")
			if ok {
				require.Equal(t, []byte("feed"), out)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, cache.Len())
}
