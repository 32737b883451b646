package application

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

type Resource string

const (
	ResourcePlayerState  Resource = "player_state"
	ResourceNextQuestion Resource = "next_question"
	ResourceLeaderboard  Resource = "leaderboard"
	ResourceHealth       Resource = "health"
)

// Key identifies one cached remote read: a resource class plus its parameter
// (session id, leaderboard limit, empty for health).
type Key struct {
	Resource Resource
	Param    string
}

func (k Key) flightKey() string {
	return string(k.Resource) + "\x00" + k.Param
}

func PlayerStateKey(session domain.SessionID) Key {
	return Key{Resource: ResourcePlayerState, Param: string(session)}
}

func NextQuestionKey(session domain.SessionID) Key {
	return Key{Resource: ResourceNextQuestion, Param: string(session)}
}

func LeaderboardKey(limit int) Key {
	return Key{Resource: ResourceLeaderboard, Param: strconv.Itoa(limit)}
}

func HealthKey() Key {
	return Key{Resource: ResourceHealth}
}

// Policy is the per-resource staleness and retry budget. TTL zero means a
// read is never served from cache. Retries counts attempts after the first.
type Policy struct {
	TTL          time.Duration
	Retries      uint64
	RefreshEvery time.Duration
}

func DefaultPolicies() map[Resource]Policy {
	return map[Resource]Policy{
		ResourcePlayerState:  {TTL: 30 * time.Second, Retries: 2},
		ResourceNextQuestion: {Retries: 1},
		ResourceLeaderboard:  {TTL: 60 * time.Second, Retries: 2, RefreshEvery: 30 * time.Second},
		ResourceHealth:       {TTL: 60 * time.Second, Retries: 1, RefreshEvery: 60 * time.Second},
	}
}

type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value      any
	present    bool
	fetchedAt  time.Time
	stale      bool
	generation uint64
}

// Snapshot captures a key's value (or its absence) for later rollback.
type Snapshot struct {
	value   any
	present bool
}

func (s Snapshot) Value() (any, bool) {
	return s.value, s.present
}

// Cache is the single shared server-state store. Reads within a key's
// staleness window are served locally; concurrent fetches for one key
// collapse into a single network call; failures keep the previous value and
// mark it stale. Writes go through the mutation protocol (Supersede /
// Snapshot / Put / Commit / Restore) so an in-flight read can never clobber
// an optimistic value: every write bumps the key's generation and a read
// only lands if the generation is unchanged since it started.
type Cache struct {
	clock    ports.Clock
	logger   *slog.Logger
	policies map[Resource]Policy

	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
}

func NewCache(clock ports.Clock, logger *slog.Logger) *Cache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Cache{
		clock:    clock,
		logger:   logger,
		policies: DefaultPolicies(),
		entries:  map[Key]*entry{},
	}
}

func (c *Cache) policy(res Resource) Policy {
	return c.policies[res]
}

// Read returns the cached value at key when it is still fresh, otherwise
// fetches it with the resource's retry budget. All concurrent callers for
// one key await the same outstanding call.
func (c *Cache) Read(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	pol := c.policy(key.Resource)

	c.mu.Lock()
	ent := c.entries[key]
	if ent != nil && ent.present && !ent.stale && pol.TTL > 0 && c.clock.Now().Sub(ent.fetchedAt) < pol.TTL {
		value := ent.value
		c.mu.Unlock()
		return value, nil
	}
	var startGen uint64
	if ent != nil {
		startGen = ent.generation
	}
	c.mu.Unlock()

	value, err, _ := c.group.Do(key.flightKey(), func() (any, error) {
		fetched, fetchErr := c.fetchWithRetry(ctx, pol, fetch)
		if fetchErr != nil {
			c.markStale(key)
			return nil, fetchErr
		}
		return c.applyRead(key, startGen, fetched), nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (c *Cache) fetchWithRetry(ctx context.Context, pol Policy, fetch FetchFunc) (any, error) {
	var value any
	operation := func() error {
		fetched, err := fetch(ctx)
		if err != nil {
			if !domain.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		value = fetched
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newExponentialBackOff(), pol.Retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return value, nil
}

func newExponentialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

// applyRead stores a fetched value unless the key's generation moved while
// the fetch was in flight. A moved generation means a mutation superseded
// the read; the mutation's value wins and the read result is discarded.
func (c *Cache) applyRead(key Key, startGen uint64, value any) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.entries[key]
	if ent == nil {
		ent = &entry{}
		c.entries[key] = ent
	}
	if ent.generation != startGen {
		c.logger.Debug("discarding superseded read", "resource", key.Resource, "param", key.Param)
		if ent.present {
			return ent.value
		}
		return value
	}

	ent.value = value
	ent.present = true
	ent.fetchedAt = c.clock.Now()
	ent.stale = false
	return value
}

func (c *Cache) markStale(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent := c.entries[key]; ent != nil && ent.present {
		ent.stale = true
	}
}

// Peek returns the cached value without any freshness check or fetch.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.entries[key]
	if ent == nil || !ent.present {
		return nil, false
	}
	return ent.value, true
}

// TakeSnapshot captures the current value at key for a later Restore.
func (c *Cache) TakeSnapshot(key Key) Snapshot {
	value, present := c.Peek(key)
	return Snapshot{value: value, present: present}
}

// Supersede bumps the key's generation so any in-flight read discards its
// eventual result. Mutations call this before touching the key.
func (c *Cache) Supersede(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumpLocked(key)
}

func (c *Cache) bumpLocked(key Key) *entry {
	ent := c.entries[key]
	if ent == nil {
		ent = &entry{}
		c.entries[key] = ent
	}
	ent.generation++
	return ent
}

// Put writes a locally computed projection so the UI reflects a mutation
// before the server confirms it.
func (c *Cache) Put(key Key, value any) {
	c.write(key, value)
}

// Commit overwrites key with the server's authoritative value. The server
// snapshot always wins over any optimistic guess; values are replaced
// wholesale, never merged.
func (c *Cache) Commit(key Key, value any) {
	c.write(key, value)
}

func (c *Cache) write(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.bumpLocked(key)
	ent.value = value
	ent.present = true
	ent.fetchedAt = c.clock.Now()
	ent.stale = false
}

// Restore puts the key back to a snapshot taken before a failed mutation.
// The generation still advances: a read dispatched before the rollback must
// not land on top of the restored value either.
func (c *Cache) Restore(key Key, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.bumpLocked(key)
	if !snap.present {
		ent.present = false
		ent.value = nil
		return
	}
	ent.value = snap.value
	ent.present = true
	ent.stale = true
}

// Invalidate marks the entry stale; the next read refetches.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent := c.entries[key]; ent != nil {
		ent.stale = true
	}
}

// InvalidateResource marks every entry of a resource class stale, used when
// a mutation affects a resource it did not itself return.
func (c *Cache) InvalidateResource(res Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, ent := range c.entries {
		if key.Resource == res {
			ent.stale = true
		}
	}
}

// Watch refetches key on the resource's refresh interval until ctx is done,
// reporting each result to onUpdate. Resources without a refresh interval
// return immediately.
func (c *Cache) Watch(ctx context.Context, key Key, fetch FetchFunc, onUpdate func(any, error)) {
	pol := c.policy(key.Resource)
	if pol.RefreshEvery <= 0 {
		return
	}

	ticker := time.NewTicker(pol.RefreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Invalidate(key)
			value, err := c.Read(ctx, key, fetch)
			if err != nil {
				c.logger.Debug("background refresh failed", "resource", key.Resource, "param", key.Param, "error", err)
			}
			if onUpdate != nil {
				onUpdate(value, err)
			}
		}
	}
}
