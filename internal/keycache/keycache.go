// Package keycache provides the server-side session key cache: a short-lived
// in-memory map from account ID to that account's unwrapped content key.
//
// Only legacy and key-wrapped accounts ever appear here. Zero-knowledge
// accounts must never have a server-resident usable key, so their login path
// never calls Put. The cache is an explicit injectable dependency rather than
// a package-level singleton so the eviction rules are testable in isolation.
package keycache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
)

// Cache defines the session key cache interface.
type Cache interface {
	// Put stores a copy of the key with the configured expiry. Any expiry
	// already scheduled for this account is cancelled first, so an earlier
	// login's timer can never evict a later login's key.
	Put(accountID uuid.UUID, key []byte)

	// Get returns a copy of the cached key, or false if absent or expired.
	Get(accountID uuid.UUID) ([]byte, bool)

	// Evict removes and zeroes the entry immediately. Called on password
	// change, zero-knowledge finalize, and destructive reset.
	Evict(accountID uuid.UUID)

	// Close evicts every entry and stops all timers.
	Close()
}

// entry holds a cached key together with its expiry timer and the generation
// counter that guards against stale timer fires.
type entry struct {
	key        []byte
	timer      *time.Timer
	generation uint64
}

// ExpiringCache implements Cache with per-entry time.AfterFunc expiry.
type ExpiringCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]*entry
}

// New creates an ExpiringCache with the given time-to-live per entry.
func New(ttl time.Duration) *ExpiringCache {
	return &ExpiringCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]*entry),
	}
}

// Put stores a copy of key for accountID, replacing and zeroing any previous
// entry and cancelling its expiry timer before scheduling a new one.
func (c *ExpiringCache) Put(accountID uuid.UUID, key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var generation uint64
	if existing, ok := c.entries[accountID]; ok {
		existing.timer.Stop()
		cryptoDomain.Zero(existing.key)
		generation = existing.generation + 1
	}

	stored := make([]byte, len(key))
	copy(stored, key)

	e := &entry{key: stored, generation: generation}
	// The timer callback checks the generation so a timer that already fired
	// concurrently with Put cannot evict the replacement entry.
	e.timer = time.AfterFunc(c.ttl, func() {
		c.expire(accountID, generation)
	})
	c.entries[accountID] = e
}

// Get returns a copy of the cached key for accountID.
func (c *ExpiringCache) Get(accountID uuid.UUID) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[accountID]
	if !ok {
		return nil, false
	}

	out := make([]byte, len(e.key))
	copy(out, e.key)
	return out, true
}

// Evict removes the entry for accountID, zeroing the key material.
func (c *ExpiringCache) Evict(accountID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(accountID)
}

// Close evicts all entries and stops their timers.
func (c *ExpiringCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.entries {
		c.remove(id)
	}
}

// expire is the timer callback: it evicts only if the entry still belongs to
// the generation the timer was armed for.
func (c *ExpiringCache) expire(accountID uuid.UUID, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[accountID]
	if !ok || e.generation != generation {
		return
	}
	c.remove(accountID)
}

// remove deletes and zeroes an entry. Caller must hold the lock.
func (c *ExpiringCache) remove(accountID uuid.UUID) {
	e, ok := c.entries[accountID]
	if !ok {
		return
	}
	e.timer.Stop()
	cryptoDomain.Zero(e.key)
	delete(c.entries, accountID)
}
