package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkarels/appealsmith/internal/cache"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// CachedStore wraps a Store with the layered cache so repeated searches over
// the same filtered view do not re-read the underlying database. Any write
// clears the cache: correctness over cleverness.
type CachedStore struct {
	inner Store
	cache cache.Cache
}

// NewCachedStore wraps inner with the given cache.
func NewCachedStore(inner Store, c cache.Cache) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

// PutDocument writes through and invalidates the cache.
func (s *CachedStore) PutDocument(ctx context.Context, doc model.Document) error {
	if err := s.inner.PutDocument(ctx, doc); err != nil {
		return err
	}
	return s.cache.Clear()
}

// PutChunks writes through and invalidates the cache.
func (s *CachedStore) PutChunks(ctx context.Context, documentID string, chunks []model.Chunk) error {
	if err := s.inner.PutChunks(ctx, documentID, chunks); err != nil {
		return err
	}
	return s.cache.Clear()
}

// ListCandidates serves from cache when possible.
func (s *CachedStore) ListCandidates(ctx context.Context, filters textindex.Filters) ([]textindex.Candidate, error) {
	key := cache.Key(filterKey(filters))

	if data, found := s.cache.Get(key); found {
		var candidates []textindex.Candidate
		if err := json.Unmarshal(data, &candidates); err == nil {
			return candidates, nil
		}
		// Corrupt entry: fall through to the store.
		_ = s.cache.Delete(key)
	}

	candidates, err := s.inner.ListCandidates(ctx, filters)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(candidates); err == nil {
		_ = s.cache.Set(key, data, 0)
	}
	return candidates, nil
}

// DeleteDocument writes through and invalidates the cache.
func (s *CachedStore) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.inner.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	return s.cache.Clear()
}

// Close closes the underlying store.
func (s *CachedStore) Close() error {
	return s.inner.Close()
}

// filterKey builds a canonical cache key for a filter set. Tags are excluded:
// they do not narrow the candidate view.
func filterKey(filters textindex.Filters) string {
	return strings.Join([]string{"candidates", filters.DocType, filters.OwnerKey}, "|")
}
