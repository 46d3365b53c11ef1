package cart

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storage"
	"storefront/internal/types"
)

func newTestStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()
	backing, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	s, err := NewStore(backing)
	require.NoError(t, err)
	return s, backing
}

func widget() types.Product {
	return types.Product{ID: "p1", Name: "Widget", Price: 20.00, Quantity: 50}
}

func gadget() types.Product {
	return types.Product{ID: "p2", Name: "Gadget", Price: 5.50, Quantity: 8}
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(widget(), 1))
	require.NoError(t, s.AddItem(gadget(), 2))
	require.NoError(t, s.AddItem(widget(), 3))

	items := s.Items()
	want := []types.CartLineItem{
		{ID: "p1", Name: "Widget", Price: 20.00, Quantity: 4},
		{ID: "p2", Name: "Gadget", Price: 5.50, Quantity: 2},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("cart items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 6, s.Count())
}

func TestAddItem_NeverDuplicatesLines(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.AddItem(widget(), 1))
	}

	seen := map[string]bool{}
	for _, li := range s.Items() {
		require.False(t, seen[li.ID], "duplicate line for product %s", li.ID)
		seen[li.ID] = true
	}
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, 10, s.Count())
}

func TestSetQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(widget(), 2))
	require.NoError(t, s.AddItem(gadget(), 1))

	t.Run("replaces quantity", func(t *testing.T) {
		require.NoError(t, s.SetQuantity("p1", 5))
		assert.Equal(t, 5, s.Items()[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		require.NoError(t, s.SetQuantity("p1", 0))
		for _, li := range s.Items() {
			assert.NotEqual(t, "p1", li.ID)
		}
	})

	t.Run("negative removes the line", func(t *testing.T) {
		require.NoError(t, s.SetQuantity("p2", -3))
		assert.Empty(t, s.Items())
	})
}

func TestRemoveItem_PreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(types.Product{ID: "a", Name: "A", Price: 1}, 1))
	require.NoError(t, s.AddItem(types.Product{ID: "b", Name: "B", Price: 1}, 1))
	require.NoError(t, s.AddItem(types.Product{ID: "c", Name: "C", Price: 1}, 1))

	require.NoError(t, s.RemoveItem("b"))

	ids := []string{}
	for _, li := range s.Items() {
		ids = append(ids, li.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestSubtotal_TracksMutations(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(widget(), 2))
	assert.Equal(t, 40.00, s.Subtotal())

	require.NoError(t, s.AddItem(gadget(), 2))
	assert.Equal(t, 51.00, s.Subtotal())

	require.NoError(t, s.SetQuantity("p2", 1))
	assert.Equal(t, 45.50, s.Subtotal())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0.00, s.Subtotal())
	assert.Equal(t, 0, s.Count())
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	backing, err := storage.Open(t.TempDir())
	require.NoError(t, err)

	first, err := NewStore(backing)
	require.NoError(t, err)
	require.NoError(t, first.AddItem(widget(), 3))

	second, err := NewStore(backing)
	require.NoError(t, err)
	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestSubscribe_NotifiesOnEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ch := s.Subscribe()

	drain := func() bool {
		select {
		case <-ch:
			return true
		case <-time.After(time.Second):
			return false
		}
	}

	require.NoError(t, s.AddItem(widget(), 1))
	assert.True(t, drain(), "AddItem should notify")

	require.NoError(t, s.SetQuantity("p1", 4))
	assert.True(t, drain(), "SetQuantity should notify")

	require.NoError(t, s.Clear())
	assert.True(t, drain(), "Clear should notify")
}

func TestSubscribe_ClearNotifiesExactlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(widget(), 1))

	ch := s.Subscribe()
	require.NoError(t, s.Clear())

	<-ch
	select {
	case <-ch:
		t.Fatal("Clear must emit exactly one notification")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.Count())
}

func TestItems_ReturnsImmutableSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(widget(), 2))

	snapshot := s.Items()
	require.NoError(t, s.SetQuantity("p1", 9))

	assert.Equal(t, 2, snapshot[0].Quantity, "snapshot must not see later mutations")
}

func TestReload_PicksUpExternalWrite(t *testing.T) {
	dir := t.TempDir()
	backing, err := storage.Open(dir)
	require.NoError(t, err)
	s, err := NewStore(backing)
	require.NoError(t, err)

	// Another client instance writes the cart behind our back.
	other, err := storage.Open(dir)
	require.NoError(t, err)
	require.NoError(t, other.Put(storage.KeyCart, []types.CartLineItem{
		{ID: "x", Name: "External", Price: 2, Quantity: 7},
	}))

	require.NoError(t, s.Reload())
	assert.Equal(t, 7, s.Count())
}
