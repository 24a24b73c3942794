package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageIsolatesCallers(t *testing.T) {
	storage := NewMemoryStorage()

	carts := map[string][]Item{
		"u1": {{ProductID: "p1", Option: "Hộp", UnitPrice: decimal.NewFromInt(50000), Quantity: 1}},
	}
	require.NoError(t, storage.Save(t.Context(), carts))

	// Mutating the caller's map after Save must not leak into storage.
	carts["u1"][0].Quantity = 99

	loaded, err := storage.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded["u1"][0].Quantity)

	// And mutating a loaded copy must not leak back either.
	loaded["u1"][0].Quantity = 42
	again, err := storage.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, again["u1"][0].Quantity)
}

func TestMemoryStorageStartsEmpty(t *testing.T) {
	loaded, err := NewMemoryStorage().Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestNewRedisStorageRequiresClient(t *testing.T) {
	_, err := NewRedisStorage(nil)
	require.Error(t, err)
}
