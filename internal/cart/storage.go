package cart

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/redis"
)

// Storage is the durable backing of the cart mapping: one namespaced record
// holding user id to item sequence, read and written wholesale. Implementations
// can swap local storage for a networked backend without touching the store.
type Storage interface {
	Load(ctx context.Context) (map[string][]Item, error)
	Save(ctx context.Context, carts map[string][]Item) error
}

// RedisStorage persists the mapping as one JSON value under the namespaced
// cart key.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) (*RedisStorage, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "redis client required")
	}
	return &RedisStorage{client: client}, nil
}

func (s *RedisStorage) Load(ctx context.Context) (map[string][]Item, error) {
	raw, err := s.client.Get(ctx, s.client.CartMappingKey())
	if err != nil {
		if redis.IsNotFound(err) {
			return map[string][]Item{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart mapping")
	}

	carts := map[string][]Item{}
	if err := json.Unmarshal([]byte(raw), &carts); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart mapping")
	}
	return carts, nil
}

func (s *RedisStorage) Save(ctx context.Context, carts map[string][]Item) error {
	raw, err := json.Marshal(carts)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart mapping")
	}
	if err := s.client.Set(ctx, s.client.CartMappingKey(), string(raw), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart mapping")
	}
	return nil
}

// MemoryStorage keeps the mapping in process. Used by tests and as a dev
// fallback when redis is not configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string][]Item{}}
}

func (s *MemoryStorage) Load(ctx context.Context) (map[string][]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMapping(s.carts), nil
}

func (s *MemoryStorage) Save(ctx context.Context, carts map[string][]Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = cloneMapping(carts)
	return nil
}

func cloneMapping(carts map[string][]Item) map[string][]Item {
	out := make(map[string][]Item, len(carts))
	for userID, items := range carts {
		out[userID] = slices.Clone(items)
	}
	return out
}
