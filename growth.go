package slotgo

import (
	"time"

	"github.com/hupe1980/slotgo/internal/block"
	"github.com/hupe1980/slotgo/internal/conv"
)

// DefaultAlignment is the byte boundary block sizes are rounded up to.
const DefaultAlignment = 16

// GrowthFunc returns the next capacity on the growth curve after n.
type GrowthFunc func(n int) int

// DefaultGrowth is the staircase 10 → 100 → 1,000 → 10,000, then doubling.
func DefaultGrowth(n int) int {
	switch {
	case n < 10:
		return 10
	case n < 100:
		return 100
	case n < 1000:
		return 1000
	case n < 10000:
		return 10000
	default:
		return n * 2
	}
}

// Policy sizes a block whenever a container must enlarge it.
// The zero value uses DefaultGrowth and DefaultAlignment.
type Policy struct {
	Growth    GrowthFunc
	Alignment int
}

func (p Policy) growth() GrowthFunc {
	if p.Growth == nil {
		return DefaultGrowth
	}
	return p.Growth
}

func (p Policy) alignment() int {
	if p.Alignment <= 0 || p.Alignment&(p.Alignment-1) != 0 {
		return DefaultAlignment
	}
	return p.Alignment
}

// Capacity returns the entry capacity of a block that grows from current to
// hold at least additional more entries.
//
// The curve is stepped until it meets current+additional. The resulting byte
// size (entries plus headerSize) is rounded up to the alignment boundary and
// the capacity recomputed from it, so alignment slack becomes usable entries.
func (p Policy) Capacity(current, additional, entrySize, headerSize int) (int, error) {
	need, err := conv.AddInt(current, additional)
	if err != nil {
		return 0, err
	}

	grow := p.growth()
	n := current
	for n < need {
		next := grow(n)
		if next <= n {
			return 0, ErrInvalidGrowth
		}
		n = next
	}

	size, err := p.Bytes(n, entrySize, headerSize)
	if err != nil {
		return 0, err
	}
	if entrySize > 0 {
		n = (size - headerSize) / entrySize
	}
	return n, nil
}

// Bytes returns the aligned byte size of a block of n entries.
func (p Policy) Bytes(n, entrySize, headerSize int) (int, error) {
	body, err := conv.MulInt(n, entrySize)
	if err != nil {
		return 0, err
	}
	size, err := conv.AddInt(body, headerSize)
	if err != nil {
		return 0, err
	}
	mask := p.alignment() - 1
	size, err = conv.AddInt(size, mask)
	if err != nil {
		return 0, err
	}
	return size &^ mask, nil
}

// TableCapacity returns the next slot table capacity: 8, then doubling.
// It is always a power of two so a hash can be masked into the bucket array.
func TableCapacity(current int) int {
	if current < 8 {
		return 8
	}
	return current * 2
}

// grow enlarges r so it holds at least additional more entries than its
// current length, keeping its first keep entries. limit caps the capacity
// (0 means uncapped); a region already at the cap fails with
// ErrCapacityExceeded. On error r is unchanged.
func grow[E any](o *options, kind ContainerKind, r *block.Region[E], keep, additional, headerWords, limit int) error {
	start := time.Now()
	from := r.Len()
	to, err := growTo[E](o, from, additional, headerWords, limit)
	if err == nil {
		var size int
		size, err = o.policy().Bytes(to, block.EntrySize[E](), o.headerBytes(headerWords))
		if err == nil {
			var next block.Region[E]
			next, err = block.Realloc(o.region, o.acquirer(), r, keep, to, int64(size))
			if err == nil {
				*r = next
			}
		}
	}
	if err != nil {
		err = &GrowError{Kind: kind, From: from, To: to, cause: err}
	}

	o.log().LogGrow(kind, from, to, err)
	o.metrics().RecordGrow(kind, from, to, time.Since(start), err)
	return err
}

func growTo[E any](o *options, from, additional, headerWords, limit int) (int, error) {
	if limit > 0 && from+additional > limit {
		return 0, ErrCapacityExceeded
	}
	to, err := o.policy().Capacity(from, additional, block.EntrySize[E](), o.headerBytes(headerWords))
	if err != nil {
		return 0, err
	}
	if limit > 0 && to > limit {
		to = limit
	}
	return to, nil
}
