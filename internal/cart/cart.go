// Package cart implements the persisted cart store. The cart lives
// entirely client-side until checkout: every mutation writes the whole
// collection back to durable storage and notifies subscribers so views
// like the header badge refresh without polling.
package cart

import (
	"fmt"
	"sync"

	"storefront/internal/pricing"
	"storefront/internal/storage"
	"storefront/internal/types"
)

// Store owns the cart line items. All mutation goes through its methods;
// nothing else writes the cart key.
type Store struct {
	mu      sync.Mutex
	items   []types.CartLineItem
	backing *storage.Store

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewStore loads any persisted cart from backing and returns the store.
func NewStore(backing *storage.Store) (*Store, error) {
	s := &Store{backing: backing}
	if _, err := backing.Get(storage.KeyCart, &s.items); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s, nil
}

// AddItem merges the product into the cart: an existing line for the same
// product id accumulates quantity, otherwise a new line is appended.
func (s *Store) AddItem(p types.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, types.CartLineItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: qty,
		})
	}
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetQuantity replaces the quantity of the line with the given product id.
// A quantity of zero or less removes the line.
func (s *Store) SetQuantity(productID string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(productID)
	}
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ID == productID {
			changed = s.items[i].Quantity != qty
			s.items[i].Quantity = qty
			break
		}
	}
	var err error
	if changed {
		err = s.persistLocked()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.notify()
	}
	return nil
}

// RemoveItem deletes the line with the given product id, preserving the
// order of the remaining lines.
func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	var err error
	if removed {
		err = s.persistLocked()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if removed {
		s.notify()
	}
	return nil
}

// Clear empties the cart. Called on explicit "clear cart" and after a
// successful order placement.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.items = nil
	err := s.backing.Delete(storage.KeyCart)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.notify()
	return nil
}

// Items returns a copy of the line items in insertion order. Callers may
// hold the returned slice as an immutable snapshot; later store mutations
// do not touch it.
func (s *Store) Items() []types.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the sum of quantities across all lines, the badge number.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

// Subtotal is the merchandise total over the cart, before tax/shipping.
func (s *Store) Subtotal() float64 {
	return pricing.Subtotal(s.Items())
}

// Reload re-reads the persisted cart, replacing in-memory state. Used
// when the storage watcher reports an external write.
func (s *Store) Reload() error {
	s.mu.Lock()
	var items []types.CartLineItem
	_, err := s.backing.Get(storage.KeyCart, &items)
	if err == nil {
		s.items = items
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reload cart: %w", err)
	}
	s.notify()
	return nil
}

// Subscribe returns a channel that receives a signal after every cart
// mutation. Subscribers re-read the store rather than track deltas.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber hasn't drained the previous signal; one pending
			// signal is enough since they re-read the store.
		}
	}
}

func (s *Store) persistLocked() error {
	if err := s.backing.Put(storage.KeyCart, s.items); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
