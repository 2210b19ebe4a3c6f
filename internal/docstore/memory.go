package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// MemoryStore keeps documents in process memory. Documents never expire.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

// Put stores the JSON encoding of doc so callers cannot mutate it afterwards
func (s *MemoryStore) Put(ctx context.Context, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", key, err)
	}
	s.cache.Set(key, data, cache.NoExpiration)
	return nil
}

// Get decodes the document stored under key
func (s *MemoryStore) Get(ctx context.Context, key string, dest any) error {
	value, found := s.cache.Get(key)
	if !found {
		return &models.NotFoundError{Kind: "document", Name: key}
	}
	if err := json.Unmarshal(value.([]byte), dest); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", key, err)
	}
	return nil
}

// Keys lists keys with the given prefix
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close flushes the store
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
