package slotgo

import (
	"iter"

	"github.com/hupe1980/slotgo/internal/block"
)

// bufferHeaderWords is the fixed header of a buffer block: capacity and length.
const bufferHeaderWords = 2

// Buffer is a contiguous, amortized-growth array of T.
//
// It has no element identity: an index or element pointer is valid only until
// the next call that grows, truncates or clears the buffer. The zero value is
// an empty buffer ready to use.
type Buffer[T any] struct {
	opts   options
	region block.Region[T]
	n      int
	ext    []uint32
}

// NewBuffer creates an empty Buffer. No memory is allocated until the first
// Append or Extend.
func NewBuffer[T any](opts ...Option) *Buffer[T] {
	o := newOptions(opts)
	return &Buffer[T]{opts: o, ext: o.ext()}
}

// Append adds v at the end of the buffer.
func (b *Buffer[T]) Append(v T) error {
	if err := b.reserve(1); err != nil {
		return err
	}
	b.region.Entries()[b.n] = v
	b.n++
	return nil
}

// Extend grows the buffer by n zeroed entries and returns them as one
// contiguous slice, valid until the next structural mutation.
func (b *Buffer[T]) Extend(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := b.reserve(n); err != nil {
		return nil, err
	}
	start := b.n
	b.n += n
	return b.region.Entries()[start:b.n:b.n], nil
}

func (b *Buffer[T]) reserve(n int) error {
	free := b.region.Len() - b.n
	if n <= free {
		return nil
	}
	return grow(&b.opts, KindBuffer, &b.region, b.n, n-free, bufferHeaderWords, 0)
}

// Len returns the number of entries in the buffer.
func (b *Buffer[T]) Len() int {
	return b.n
}

// Cap returns the number of entries the current block can hold.
func (b *Buffer[T]) Cap() int {
	return b.region.Len()
}

// At returns a pointer to entry i, or nil if i is out of range.
func (b *Buffer[T]) At(i int) *T {
	if i < 0 || i >= b.n {
		return nil
	}
	return &b.region.Entries()[i]
}

// Last returns a pointer to the final entry, or nil if the buffer is empty.
func (b *Buffer[T]) Last() *T {
	return b.At(b.n - 1)
}

// Slice returns the entries in order. It aliases the buffer's block.
func (b *Buffer[T]) Slice() []T {
	if b.n == 0 {
		return nil
	}
	return b.region.Entries()[:b.n:b.n]
}

// All returns an iterator over the entries in order.
func (b *Buffer[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		entries := b.region.Entries()
		for i := 0; i < b.n; i++ {
			if !yield(i, &entries[i]) {
				return
			}
		}
	}
}

// Truncate drops the last n entries. n larger than Len empties the buffer.
// Capacity is kept.
func (b *Buffer[T]) Truncate(n int) {
	if n <= 0 {
		return
	}
	if n > b.n {
		n = b.n
	}
	clear(b.region.Entries()[b.n-n : b.n])
	b.n -= n
}

// Clear removes every entry but keeps the block for reuse.
func (b *Buffer[T]) Clear() {
	b.Truncate(b.n)
}

// Release frees the whole block at once. The buffer is empty and reusable
// afterwards.
func (b *Buffer[T]) Release() {
	b.region.Free(b.opts.acquirer())
	b.n = 0
}

// Ext returns the reserved caller header words (see WithReservedWords).
func (b *Buffer[T]) Ext() []uint32 {
	return b.ext
}
