/*
Package querycache memoizes query results by key and drops them by tag.
Mutations invalidate the tags they affect so the next read refetches.

Every fetch is issued a token when it starts. When it finishes, its result is
only stored if none of its tags were invalidated in the meantime and no fetch
for the same key that started later has already stored a result. A slow,
stale fetch can never overwrite newer data.
*/
package querycache

import (
	"context"
	"slices"
	"sync"
	"time"
)

type Invalidator interface {
	Invalidate(tags ...string)
}

/*
Query describes one cacheable read. The key is always treated as one of
its tags.
*/
type Query[T any] struct {
	Key   string
	Tags  []string
	Fetch func(ctx context.Context) (T, error)
}

type entry[T any] struct {
	value    T
	tags     []string
	seq      uint64
	storedAt time.Time
}

type token struct {
	seq         uint64
	generations []uint64
}

type Cache[T any] struct {
	mu          sync.Mutex
	entries     map[string]entry[T]
	generations map[string]uint64
	seq         uint64
	ttl         time.Duration
	now         func() time.Time
}

/*
New creates a cache. A ttl of zero keeps entries until they are invalidated.
*/
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries:     map[string]entry[T]{},
		generations: map[string]uint64{},
		ttl:         ttl,
		now:         time.Now,
	}
}

/*
Get returns the cached value for q.Key or runs q.Fetch. Fetch errors are
returned as-is and never cached.
*/
func (c *Cache[T]) Get(ctx context.Context, q Query[T]) (T, error) {
	var (
		err   error
		value T
	)

	tags := queryTags(q)

	c.mu.Lock()

	if e, ok := c.entries[q.Key]; ok && !c.expired(e) {
		c.mu.Unlock()
		return e.value, nil
	}

	tok := c.issueToken(tags)
	c.mu.Unlock()

	if value, err = q.Fetch(ctx); err != nil {
		return value, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(q.Key, tags, value, tok)
	return value, nil
}

/*
peek returns the cached value without fetching.
*/
func (c *Cache[T]) peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]

	if !ok || c.expired(e) {
		var zero T
		return zero, false
	}

	return e.value, true
}

/*
Invalidate drops every entry carrying one of the tags and marks in-flight
fetches for those tags as stale.
*/
func (c *Cache[T]) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		c.generations[tag]++
	}

	for key, e := range c.entries {
		for _, tag := range tags {
			if slices.Contains(e.tags, tag) {
				delete(c.entries, key)
				break
			}
		}
	}
}

func (c *Cache[T]) issueToken(tags []string) token {
	c.seq++

	tok := token{
		seq:         c.seq,
		generations: make([]uint64, len(tags)),
	}

	for i, tag := range tags {
		tok.generations[i] = c.generations[tag]
	}

	return tok
}

func (c *Cache[T]) store(key string, tags []string, value T, tok token) {
	for i, tag := range tags {
		if c.generations[tag] != tok.generations[i] {
			return
		}
	}

	if existing, ok := c.entries[key]; ok && existing.seq > tok.seq {
		return
	}

	c.entries[key] = entry[T]{
		value:    value,
		tags:     tags,
		seq:      tok.seq,
		storedAt: c.now(),
	}
}

func (c *Cache[T]) expired(e entry[T]) bool {
	if c.ttl <= 0 {
		return false
	}

	return c.now().Sub(e.storedAt) > c.ttl
}

func queryTags[T any](q Query[T]) []string {
	tags := []string{q.Key}

	for _, tag := range q.Tags {
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}

	return tags
}

/*
Mutate runs fn and, only when it succeeds, invalidates tags on every
invalidator given.
*/
func Mutate(ctx context.Context, fn func(ctx context.Context) error, tags []string, invalidators ...Invalidator) error {
	if err := fn(ctx); err != nil {
		return err
	}

	for _, inv := range invalidators {
		inv.Invalidate(tags...)
	}

	return nil
}
