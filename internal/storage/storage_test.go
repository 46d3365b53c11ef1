package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/internal/types"
)

func TestStore_PutGetDelete(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	t.Run("missing key reports absent", func(t *testing.T) {
		var token string
		found, err := store.Get(KeyToken, &token)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("round trips a token string", func(t *testing.T) {
		require.NoError(t, store.Put(KeyToken, "opaque-bearer"))

		var token string
		found, err := store.Get(KeyToken, &token)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "opaque-bearer", token)
	})

	t.Run("round trips the cart collection", func(t *testing.T) {
		items := []types.CartLineItem{
			{ID: "p1", Name: "Widget", Price: 9.99, Quantity: 2},
			{ID: "p2", Name: "Gadget", Price: 50, Quantity: 1},
		}
		require.NoError(t, store.Put(KeyCart, items))

		var loaded []types.CartLineItem
		found, err := store.Get(KeyCart, &loaded)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, items, loaded)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(KeyToken))
		require.NoError(t, store.Delete(KeyToken))

		var token string
		found, err := store.Get(KeyToken, &token)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStore_WatchSeesExternalWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	watcher, err := store.Watch()
	require.NoError(t, err)
	defer watcher.Close()

	// A second store over the same directory stands in for another
	// running client instance.
	other, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, other.Put(KeyCart, []types.CartLineItem{{ID: "p1", Quantity: 1}}))

	select {
	case key := <-watcher.Events:
		assert.Equal(t, KeyCart, key)
	case <-time.After(2 * time.Second):
		t.Fatal("no storage event for external write")
	}
}

func TestKeyFromPath(t *testing.T) {
	assert.Equal(t, "cart", keyFromPath("/home/u/.storefront/cart.json"))
	assert.Equal(t, "", keyFromPath("/home/u/.storefront/cart.json.tmp"))
	assert.Equal(t, "", keyFromPath("/home/u/.storefront/notes.txt"))
}
