package hierarchy

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/teranos/eavto/errors"
)

// DefaultCacheSize bounds the entity views a Session keeps.
const DefaultCacheSize = 512

// Session caches resolved entity views for one read session. The cache is
// purged whenever the reader's generation moves, so a view never outlives
// the facts it was computed from.
type Session struct {
	resolver *Resolver

	mu         sync.Mutex
	cache      *lru.Cache
	generation uint64
	hits       uint64
	misses     uint64
}

// NewSession creates a session holding at most size views.
func (r *Resolver) NewSession(size int) (*Session, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create entity cache")
	}
	return &Session{resolver: r, cache: cache, generation: r.reader.Generation()}, nil
}

// sync drops every cached view when the store has committed since the
// last call.
func (s *Session) sync() {
	g := s.resolver.reader.Generation()
	if g != s.generation {
		s.cache.Purge()
		s.generation = g
	}
}

// ResolveEntity returns the cached view of id or resolves it.
func (s *Session) ResolveEntity(ctx context.Context, id string) (*EntityView, error) {
	s.mu.Lock()
	s.sync()
	if v, ok := s.cache.Get(id); ok {
		s.hits++
		s.mu.Unlock()
		return v.(*EntityView), nil
	}
	s.misses++
	s.mu.Unlock()

	view, err := s.resolver.ResolveEntity(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A commit during resolution makes the view stale before it is cached.
	if view.Generation == s.resolver.reader.Generation() {
		s.sync()
		s.cache.Add(id, view)
	}
	return view, nil
}

// Invalidate drops every cached view.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

// Len returns the number of cached views.
func (s *Session) Len() int {
	return s.cache.Len()
}

// Stats returns cache hits and misses so far.
func (s *Session) Stats() (hits, misses uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}
