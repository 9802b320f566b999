package ratelimit

import (
	"sync"
	"time"
)

// Store hands out one Limiter per client and category. Entries that have
// been idle for longer than the cleanup interval are evicted so one-off
// clients do not accumulate forever.
type Store struct {
	// entries maps "category|clientID" to a limiter and its last use
	entries map[string]*storeEntry

	// rates holds per-category rate overrides; "default" always exists
	rates map[string]Rate

	mu sync.Mutex

	cleanupInterval time.Duration
}

type storeEntry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewStore creates a limiter store with the given default rate. A background
// goroutine evicts idle entries every cleanupInterval.
func NewStore(defaultRate Rate, cleanupInterval time.Duration) *Store {
	store := &Store{
		entries:         make(map[string]*storeEntry),
		rates:           map[string]Rate{"default": defaultRate},
		cleanupInterval: cleanupInterval,
	}

	go store.cleanupLoop()

	return store
}

// GetLimiter returns the limiter for a client within a category, creating it
// on first use. Categories without a configured rate fall back to the
// default rate.
func (s *Store) GetLimiter(clientID string, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates["default"]
	}

	entry := &storeEntry{
		limiter:  NewLimiter(rate.RequestsPerSecond, rate.Burst),
		lastSeen: time.Now(),
	}
	s.entries[key] = entry

	return entry.limiter
}

// SetRate configures the rate for a category. Existing limiters keep the
// rate they were created with; new limiters in the category pick up the
// updated rate.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.evictIdle(time.Now())
	}
}

// evictIdle drops entries that have not been used for a full cleanup
// interval. A client that comes back simply gets a fresh bucket.
func (s *Store) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.Sub(entry.lastSeen) >= s.cleanupInterval {
			delete(s.entries, key)
		}
	}
}
