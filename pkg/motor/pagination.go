package motor

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
)

// DefaultBatchLimit is the page size used when BatchOptions.Limit is zero.
const DefaultBatchLimit = 50

// PageFetcher fetches one page of a list endpoint.
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint string, params Params) ([]json.RawMessage, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, endpoint string, params Params) ([]json.RawMessage, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, endpoint string, params Params) ([]json.RawMessage, error) {
	return f(ctx, endpoint, params)
}

// BatchOptions controls limit/offset paging.
type BatchOptions struct {
	// Limit is the page size. Defaults to 50.
	Limit int
	// Offset is the position of the first record. Defaults to 0.
	Offset int
	// MaxPages stops iteration after this many page requests even if the last
	// page was full. Zero means no cap.
	MaxPages int
}

// DefaultBatchOptions returns the default paging options.
func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{Limit: DefaultBatchLimit}
}

// Validate rejects non-positive limits and negative offsets.
func (o *BatchOptions) Validate() error {
	if o.Limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, o.Limit)
	}

	if o.Offset < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, o.Offset)
	}

	return nil
}

// BatchIterator walks a list endpoint one record at a time, requesting the
// next page only when the buffered one is used up. Iteration ends after the
// first page holding fewer than Limit records. An iterator is single use; to
// start over build a new one.
type BatchIterator[T any] struct {
	ctx      context.Context //nolint:containedctx // iterator is bound to one call
	fetcher  PageFetcher
	endpoint string
	params   Params

	limit    int
	offset   int
	maxPages int
	pages    int

	buffer []json.RawMessage
	pos    int
	done   bool
	err    error
}

// BatchFetch returns an iterator over endpoint. Caller params are sent with
// every page alongside limit and offset; a nil opts uses the defaults.
func BatchFetch[T any](ctx context.Context, fetcher PageFetcher, endpoint string, params Params, opts *BatchOptions) *BatchIterator[T] {
	resolved := DefaultBatchOptions()
	if opts != nil {
		resolved.Offset = opts.Offset
		resolved.MaxPages = opts.MaxPages

		if opts.Limit != 0 {
			resolved.Limit = opts.Limit
		}
	}

	it := &BatchIterator[T]{
		ctx:      ctx,
		fetcher:  fetcher,
		endpoint: endpoint,
		params:   params.Clone(),
		limit:    resolved.Limit,
		offset:   resolved.Offset,
		maxPages: resolved.MaxPages,
	}

	if err := resolved.Validate(); err != nil {
		it.err = err
		it.done = true
	}

	return it
}

// HasNext reports whether another record is available, fetching the next page
// if needed.
func (it *BatchIterator[T]) HasNext() bool {
	for it.pos >= len(it.buffer) && !it.done {
		it.fetchNext()
	}

	return it.pos < len(it.buffer)
}

// Next returns the next record. It returns ErrNoMoreItems once the collection
// is exhausted, or the error that stopped iteration.
func (it *BatchIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	raw := it.buffer[it.pos]
	it.pos++

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		it.err = fmt.Errorf("decoding %s record: %w", it.endpoint, err)
		it.done = true
		it.buffer = nil
		it.pos = 0

		return zero, it.err
	}

	return item, nil
}

// All drains the iterator into a slice.
func (it *BatchIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, it.err
}

// ForEach calls fn for every remaining record, stopping at the first error.
func (it *BatchIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return it.err
}

// Seq adapts the iterator for range-over-func. A failure is yielded once as
// the final pair.
func (it *BatchIterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if !yield(item, err) || err != nil {
				return
			}
		}

		if it.err != nil {
			var zero T
			yield(zero, it.err)
		}
	}
}

// Err returns the error that stopped iteration, if any.
func (it *BatchIterator[T]) Err() error {
	return it.err
}

// Pages returns how many page requests have been issued.
func (it *BatchIterator[T]) Pages() int {
	return it.pages
}

// Offset returns the offset the next page request will use.
func (it *BatchIterator[T]) Offset() int {
	return it.offset
}

func (it *BatchIterator[T]) fetchNext() {
	if it.maxPages > 0 && it.pages >= it.maxPages {
		it.done = true

		return
	}

	if err := it.ctx.Err(); err != nil {
		it.err = err
		it.done = true

		return
	}

	params := it.params.Clone()
	params["limit"] = it.limit
	params["offset"] = it.offset

	page, err := it.fetcher.FetchPage(it.ctx, it.endpoint, params)
	it.pages++

	if err != nil {
		it.err = err
		it.done = true

		return
	}

	it.buffer = page
	it.pos = 0

	if len(page) < it.limit {
		it.done = true

		return
	}

	it.offset += it.limit
}
