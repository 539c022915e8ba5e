// Package feedcache keeps rendered feeds for a short while so that calendar clients polling the
// server do not trigger a full scrape of the portal every time.
//
// An entry is bound to the password it was produced with through a salted argon2id hash, the
// password itself is never stored.
package feedcache

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"sync"
	"time"

	"liseplanning/internal/components/assert"
	"liseplanning/internal/components/chrono"
	"liseplanning/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/argon2"
)

// TTL is how long a feed stays valid after it was captured.
const TTL = 10 * time.Minute

const saltLength = 16

var meter = otel.Meter("liseplanning/internal/feedcache")

var hitCounter, _ = meter.Int64Counter(
	"feedcache.hits",
	metric.WithDescription("feeds served from the cache"),
)
var missCounter, _ = meter.Int64Counter(
	"feedcache.misses",
	metric.WithDescription("lookups that required a scrape"),
)
var evictionCounter, _ = meter.Int64Counter(
	"feedcache.evictions",
	metric.WithDescription("entries dropped for expiry or credential mismatch"),
)

const (
	report_cache_salt = "salt"
	report_cache_size = "size"
)

// HashParams are the argon2id parameters of the credential proof.
type HashParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultHashParams follows the recommendation of the argon2 RFC for interactive logins.
var DefaultHashParams = HashParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
}

type credentialProof struct {
	salt []byte
	hash []byte
}

type entry struct {
	feed       []byte
	capturedAt time.Time
	proof      credentialProof
}

type Options struct {
	// HashParams defaults to DefaultHashParams when zero.
	HashParams HashParams
}

// Cache maps keys of type K to feeds. Callers that keep several renderings per student use a struct
// key so that no username can alias another entry.
type Cache[K comparable] struct {
	clock  chrono.API
	tel    telemetry.API
	params HashParams

	mu      sync.Mutex
	entries map[K]*entry
}

func NewCache[K comparable](clock chrono.API, tel telemetry.API, opts Options) *Cache[K] {
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")

	params := opts.HashParams
	if params == (HashParams{}) {
		params = DefaultHashParams
	}
	return &Cache[K]{
		clock:   clock,
		tel:     telemetry.NewScopedAPI("feedcache", tel),
		params:  params,
		entries: map[K]*entry{},
	}
}

func (c *Cache[K]) hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, c.params.Time, c.params.Memory, c.params.Threads, c.params.KeyLen)
}

func (c *Cache[K]) expired(e *entry, now time.Time) bool {
	return now.Sub(e.capturedAt) > TTL
}

// evict removes key only if it still holds e, a concurrent Put may have replaced it.
func (c *Cache[K]) evict(key K, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[key] == e {
		delete(c.entries, key)
		evictionCounter.Add(context.Background(), 1)
	}
}

// Get returns a copy of the feed stored under key. An entry that is expired or that was not
// produced with password is evicted and reported as absent.
func (c *Cache[K]) Get(key K, password string) ([]byte, bool) {
	ctx := context.Background()

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		missCounter.Add(ctx, 1)
		return nil, false
	}

	if c.expired(e, c.clock.Now()) {
		c.tel.ReportDebug("entry expired")
		c.evict(key, e)
		missCounter.Add(ctx, 1)
		return nil, false
	}

	hash := c.hash(password, e.proof.salt)
	if subtle.ConstantTimeCompare(hash, e.proof.hash) != 1 {
		c.tel.ReportDebug("credential mismatch")
		c.evict(key, e)
		missCounter.Add(ctx, 1)
		return nil, false
	}

	hitCounter.Add(ctx, 1)
	return bytes.Clone(e.feed), true
}

// Put stores a copy of feed under key, replacing any previous entry.
func (c *Cache[K]) Put(key K, password string, feed []byte) {
	salt := make([]byte, saltLength)
	_, err := rand.Read(salt)
	if err != nil {
		// without a salt the entry cannot be protected, not caching is always correct
		c.tel.ReportBroken(report_cache_salt, err)
		return
	}

	e := &entry{
		feed:       bytes.Clone(feed),
		capturedAt: c.clock.Now(),
		proof: credentialProof{
			salt: salt,
			hash: c.hash(password, salt),
		},
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Len is the number of entries currently held, expired ones included.
func (c *Cache[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prune drops every expired entry and returns how many were dropped.
func (c *Cache[K]) Prune() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		evictionCounter.Add(context.Background(), int64(dropped))
	}
	c.tel.ReportCount(report_cache_size, int64(len(c.entries)))
	return dropped
}
