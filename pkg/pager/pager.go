// Package pager turns a cursor-advancing page fetch into a forward-only,
// one-shot record iterator.
package pager

import (
	"context"
	"iter"

	"github.com/datazip-inc/dskit/types"
	"github.com/datazip-inc/dskit/utils/logger"
)

// FetchFunc loads the page that follows cursor and returns it together with
// the cursor for the page after it. An empty page ends the iteration.
type FetchFunc[C any] func(ctx context.Context, cursor C) ([]types.Record, C, error)

// ReleaseFunc frees whatever server-side state the cursor holds.
type ReleaseFunc[C any] func(ctx context.Context, cursor C) error

// Iterator walks the pages produced by a FetchFunc. It cannot be restarted;
// once exhausted, failed or closed every call reports the end.
type Iterator[C any] struct {
	fetch   FetchFunc[C]
	release ReleaseFunc[C]

	cursor  C
	page    []types.Record
	pos     int
	current types.Record

	done     bool
	released bool
	err      error

	pages   int
	records int
}

// New creates an iterator that starts fetching from start
func New[C any](start C, fetch FetchFunc[C]) *Iterator[C] {
	return &Iterator[C]{
		fetch:  fetch,
		cursor: start,
	}
}

// WithRelease registers a hook run once when the iteration ends, either by
// exhaustion, failure or Close.
func (it *Iterator[C]) WithRelease(release ReleaseFunc[C]) *Iterator[C] {
	it.release = release
	return it
}

// advance loads the next page into the buffer. It returns false at the end
// of the sequence or on failure.
func (it *Iterator[C]) advance(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}

	if err := ctx.Err(); err != nil {
		it.err = err
		it.finish(ctx)
		return false
	}

	page, next, err := it.fetch(ctx, it.cursor)
	if err != nil {
		it.err = err
		it.finish(ctx)
		return false
	}

	it.cursor = next
	if len(page) == 0 {
		it.finish(ctx)
		return false
	}

	it.page = page
	it.pos = 0
	it.pages++
	return true
}

func (it *Iterator[C]) finish(ctx context.Context) {
	it.done = true
	it.page = nil
	it.pos = 0
	if err := it.runRelease(ctx); err != nil {
		logger.Warnf("failed to release cursor: %s", err)
	}
}

func (it *Iterator[C]) runRelease(ctx context.Context) error {
	if it.released || it.release == nil {
		return nil
	}
	it.released = true
	return it.release(context.WithoutCancel(ctx), it.cursor)
}

// HasMore reports whether NextPage or Next may still produce records.
func (it *Iterator[C]) HasMore() bool {
	return it.pos < len(it.page) || (!it.done && it.err == nil)
}

// NextPage returns the unread part of the current page, or fetches the next
// page. It returns a nil page and nil error once the sequence is exhausted.
func (it *Iterator[C]) NextPage(ctx context.Context) ([]types.Record, error) {
	if it.pos >= len(it.page) && !it.advance(ctx) {
		return nil, it.err
	}

	rest := it.page[it.pos:]
	it.pos = len(it.page)
	it.records += len(rest)
	if len(rest) > 0 {
		it.current = rest[len(rest)-1]
	}
	return rest, nil
}

// Next moves to the next record, fetching a page when the buffer runs dry.
func (it *Iterator[C]) Next(ctx context.Context) bool {
	if it.pos >= len(it.page) && !it.advance(ctx) {
		it.current = nil
		return false
	}

	it.current = it.page[it.pos]
	it.pos++
	it.records++
	return true
}

// Record returns the record Next moved to
func (it *Iterator[C]) Record() types.Record {
	return it.current
}

// Err returns the error that ended the iteration, if any
func (it *Iterator[C]) Err() error {
	return it.err
}

// Cursor returns the continuation token for the next page
func (it *Iterator[C]) Cursor() C {
	return it.cursor
}

// Pages returns the number of non-empty pages fetched so far
func (it *Iterator[C]) Pages() int {
	return it.pages
}

// Count returns the number of records handed out so far
func (it *Iterator[C]) Count() int {
	return it.records
}

// Close ends the iteration early and releases the cursor. It is safe to call
// more than once and after exhaustion.
func (it *Iterator[C]) Close(ctx context.Context) error {
	it.done = true
	it.page = nil
	it.pos = 0
	it.current = nil
	return it.runRelease(ctx)
}

// All exposes the remaining records as a range-over-func sequence. The
// iterator is closed when the loop ends; a failure is yielded last.
func (it *Iterator[C]) All(ctx context.Context) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		defer func() {
			if err := it.Close(ctx); err != nil {
				logger.Warnf("failed to close iterator: %s", err)
			}
		}()

		for it.Next(ctx) {
			if !yield(it.Record(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// ForEach calls fn for every remaining record and stops at the first error.
func (it *Iterator[C]) ForEach(ctx context.Context, fn func(context.Context, types.Record) error) error {
	for record, err := range it.All(ctx) {
		if err != nil {
			return err
		}
		if err := fn(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
