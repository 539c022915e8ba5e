package service

import (
	"context"
	"sync"

	"liseplanning/internal/components/assert"
	"liseplanning/internal/components/telemetry"
	"liseplanning/internal/feedcache"
)

// Scraper produces the feed of a student, Orchestrator is the implementation.
//
// note: fault injection point
type Scraper interface {
	Run(ctx context.Context, username, password string, formatDescription bool) ([]byte, error)
}

// FeedKey identifies one rendering of the feed of a student. The plain and the formatted renderings
// are cached and serialized independently.
type FeedKey struct {
	Username          string
	FormatDescription bool
}

// FeedService serves feeds from the cache and scrapes the portal on a miss.
type FeedService struct {
	scraper Scraper
	cache   *feedcache.Cache[FeedKey]
	tel     telemetry.API

	mu    sync.Mutex
	locks map[FeedKey]*keyLock
}

// keyLock is a one slot semaphore, waiting on it can be abandoned when the caller's context ends.
type keyLock struct {
	slot    chan struct{}
	holders int
}

func NewFeedService(scraper Scraper, cache *feedcache.Cache[FeedKey], tel telemetry.API) *FeedService {
	assert.NotNil(scraper, "scraper")
	assert.NotNil(cache, "cache")
	assert.NotNil(tel, "telemetry")
	return &FeedService{
		scraper: scraper,
		cache:   cache,
		tel:     telemetry.NewScopedAPI("service", tel),
		locks:   map[FeedKey]*keyLock{},
	}
}

// release drops the interest of one caller in key, the lock is forgotten once nobody holds or
// waits on it.
func (s *FeedService) release(key FeedKey, l *keyLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.holders--
	if l.holders == 0 {
		delete(s.locks, key)
	}
}

func (s *FeedService) lock(ctx context.Context, key FeedKey) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{slot: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.holders++
	s.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		s.release(key, l)
		return nil, ctx.Err()
	}

	return func() {
		<-l.slot
		s.release(key, l)
	}, nil
}

// Fetch returns the feed of username, scraping the portal only when no valid cached feed exists.
// Requests for the same FeedKey are serialized, a caller whose context ends while waiting gets
// ctx.Err().
func (s *FeedService) Fetch(ctx context.Context, username, password string, formatDescription bool) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "FeedService.Fetch")
	defer span.End()

	key := FeedKey{Username: username, FormatDescription: formatDescription}
	unlock, err := s.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	feed, ok := s.cache.Get(key, password)
	if ok {
		s.tel.ReportDebug("feed cache hit")
		return feed, nil
	}

	feed, err = s.scraper.Run(ctx, username, password, formatDescription)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, password, feed)
	return feed, nil
}
