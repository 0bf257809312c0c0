// Package session holds client-side listing state: the current query, the
// latest page and the guards around fetching and mutating it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/romdo/go-debounce"

	"careers/listing-service/internal/listing"
)

// DefaultSearchDebounce is the quiet period before a search text change is
// fetched.
const DefaultSearchDebounce = 300 * time.Millisecond

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch had been issued.
var ErrSuperseded = errors.New("fetch superseded by a newer query")

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q listing.Query) (listing.Page[T], error)

// Snapshot is a consistent copy of a Browser's state.
type Snapshot[T any] struct {
	Query   listing.Query
	Page    listing.Page[T]
	Loading bool
	Err     error
}

// Browser owns one listing query and the page most recently fetched for it.
//
// Every fetch takes a sequence token; a result is applied only while its
// token is still the latest, so a slow response for an old query never
// overwrites a newer page.
type Browser[T any] struct {
	fetch Fetcher[T]
	ctx   context.Context

	mu       sync.Mutex
	query    listing.Query
	page     listing.Page[T]
	err      error
	loading  bool
	seq      uint64
	closed   bool
	onChange func(Snapshot[T])

	search       func()
	cancelSearch func()
	pending      sync.WaitGroup
}

// NewBrowser starts a browser at q. ctx bounds the debounced search fetches,
// which run outside any caller's context. A non-positive wait uses
// DefaultSearchDebounce.
func NewBrowser[T any](ctx context.Context, fetch Fetcher[T], q listing.Query, wait time.Duration) *Browser[T] {
	if wait <= 0 {
		wait = DefaultSearchDebounce
	}
	b := &Browser[T]{fetch: fetch, ctx: ctx, query: q.Normalize()}
	b.search, b.cancelSearch = debounce.NewWithMaxWait(wait, 4*wait, b.searchFired)
	return b
}

// OnChange registers fn to receive a snapshot after every applied fetch.
func (b *Browser[T]) OnChange(fn func(Snapshot[T])) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Snapshot returns the current state.
func (b *Browser[T]) Snapshot() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Refresh fetches the current query now.
func (b *Browser[T]) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.seq++
	token, q := b.seq, b.query
	b.loading = true
	b.mu.Unlock()

	page, err := b.fetch(ctx, q)

	b.mu.Lock()
	if token != b.seq {
		b.mu.Unlock()
		return ErrSuperseded
	}
	b.loading = false
	b.err = err
	if err == nil {
		b.page = page
		// follow the source's clamping
		if page.Page > 0 {
			b.query.Page = page.Page
		}
	}
	snap, notify := b.snapshot(), b.onChange
	b.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
	return err
}

// SetSearch updates the search text and schedules a debounced fetch.
func (b *Browser[T]) SetSearch(text string) {
	b.mu.Lock()
	b.query = b.query.WithCriterion(listing.KeySearch, text)
	b.mu.Unlock()
	b.search()
}

// SetFilter sets one criterion, resets to the first page and fetches.
func (b *Browser[T]) SetFilter(ctx context.Context, key listing.Key, value string) error {
	return b.update(ctx, func(q listing.Query) listing.Query { return q.WithCriterion(key, value) })
}

// ClearFilters drops every criterion, including the search text.
func (b *Browser[T]) ClearFilters(ctx context.Context) error {
	return b.update(ctx, func(q listing.Query) listing.Query { return q.WithCriteria(listing.Criteria{}) })
}

// SetSort changes the ordering, resets to the first page and fetches.
func (b *Browser[T]) SetSort(ctx context.Context, s listing.SortSpec) error {
	return b.update(ctx, func(q listing.Query) listing.Query { return q.WithSort(s) })
}

// SetPage moves to page p and fetches. Out-of-range pages are clamped by the
// source.
func (b *Browser[T]) SetPage(ctx context.Context, p int) error {
	return b.update(ctx, func(q listing.Query) listing.Query { return q.WithPage(p) })
}

// Next moves one page forward when the current page has a successor.
func (b *Browser[T]) Next(ctx context.Context) error {
	snap := b.Snapshot()
	if !snap.Page.HasNext {
		return nil
	}
	return b.SetPage(ctx, snap.Page.Page+1)
}

// Prev moves one page back when the current page has a predecessor.
func (b *Browser[T]) Prev(ctx context.Context) error {
	snap := b.Snapshot()
	if !snap.Page.HasPrev {
		return nil
	}
	return b.SetPage(ctx, snap.Page.Page-1)
}

// Close cancels a pending search fetch and waits for one already running.
func (b *Browser[T]) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancelSearch()
	b.pending.Wait()
}

func (b *Browser[T]) update(ctx context.Context, fn func(listing.Query) listing.Query) error {
	b.mu.Lock()
	b.query = fn(b.query)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

func (b *Browser[T]) searchFired() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.pending.Add(1)
	b.mu.Unlock()
	defer b.pending.Done()

	// Errors are recorded in the snapshot.
	_ = b.Refresh(b.ctx)
}

func (b *Browser[T]) snapshot() Snapshot[T] {
	return Snapshot[T]{Query: b.query, Page: b.page, Loading: b.loading, Err: b.err}
}
