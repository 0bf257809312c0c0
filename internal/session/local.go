package session

import (
	"context"

	"careers/listing-service/internal/listing"
)

// LocalSource turns a source that only lists everything into a Fetcher that
// filters, sorts and paginates in memory.
func LocalSource[T listing.Listable](listAll func(context.Context) ([]T, error)) Fetcher[T] {
	return func(ctx context.Context, q listing.Query) (listing.Page[T], error) {
		items, err := listAll(ctx)
		if err != nil {
			return listing.Page[T]{}, err
		}
		return listing.Apply(items, q), nil
	}
}

// RemoteSource wraps a Fetcher whose pages are windowed by a server and
// rejects pages with inconsistent metadata.
func RemoteSource[T any](fetch Fetcher[T]) Fetcher[T] {
	return func(ctx context.Context, q listing.Query) (listing.Page[T], error) {
		page, err := fetch(ctx, q)
		if err != nil {
			return listing.Page[T]{}, err
		}
		return listing.Relay(page)
	}
}
