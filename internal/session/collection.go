package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/listing"
)

// ErrBusy is returned when a mutation is started while another one is still
// in flight.
var ErrBusy = errors.New("another change is still being saved")

// Collection is a locally held list of records with guarded mutations.
//
// Creates and updates are applied locally first and rolled back if the save
// fails. Deletes wait for the source. Only one mutation runs at a time.
type Collection[T listing.Listable] struct {
	mu    sync.Mutex
	items []T
	busy  atomic.Bool
}

// NewCollection starts with a copy of items.
func NewCollection[T listing.Listable](items []T) *Collection[T] {
	return &Collection[T]{items: slices.Clone(items)}
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Busy reports whether a mutation is in flight.
func (c *Collection[T]) Busy() bool { return c.busy.Load() }

// Replace swaps in a freshly fetched list.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.mu.Unlock()
}

// Create inserts draft at the front and calls save. The draft is replaced by
// the saved record on success and removed on failure.
func (c *Collection[T]) Create(ctx context.Context, draft T, save func(context.Context) (T, error)) (T, error) {
	var zero T
	if !c.busy.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer c.busy.Store(false)

	draftID := draft.Facets().ID
	c.mu.Lock()
	c.items = slices.Insert(c.items, 0, draft)
	c.mu.Unlock()

	saved, err := save(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(draftID)
	if err != nil {
		if i >= 0 {
			c.items = slices.Delete(c.items, i, i+1)
		}
		return zero, err
	}
	if i >= 0 {
		c.items[i] = saved
	} else {
		c.items = slices.Insert(c.items, 0, saved)
	}
	return saved, nil
}

// Update replaces the record with next and calls save. The previous record
// is restored when the save fails; a record that no longer exists at the
// source is dropped locally.
func (c *Collection[T]) Update(ctx context.Context, next T, save func(context.Context) (T, error)) (T, error) {
	var zero T
	if !c.busy.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer c.busy.Store(false)

	id := next.Facets().ID
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, apperr.ErrNotFound
	}
	prev := c.items[i]
	c.items[i] = next
	c.mu.Unlock()

	saved, err := save(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	i = c.index(id)
	switch {
	case err == nil:
		if i >= 0 {
			c.items[i] = saved
		}
		return saved, nil
	case errors.Is(err, apperr.ErrNotFound):
		if i >= 0 {
			c.items = slices.Delete(c.items, i, i+1)
		}
	default:
		if i >= 0 {
			c.items[i] = prev
		}
	}
	return zero, err
}

// Delete calls del and removes the record once the source confirms. A
// record already gone at the source is removed as well.
func (c *Collection[T]) Delete(ctx context.Context, id string, del func(context.Context) error) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	err := del(ctx)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	c.mu.Lock()
	if i := c.index(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	c.mu.Unlock()
	return err
}

func (c *Collection[T]) index(id string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return it.Facets().ID == id })
}
