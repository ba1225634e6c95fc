package block

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/slotgo/internal/conv"
	"github.com/hupe1980/slotgo/internal/mmap"
)

// Acquirer is charged for every region allocated and refunded on free.
type Acquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Kind selects where a region's memory comes from.
type Kind uint8

const (
	// Heap regions are ordinary Go slices.
	Heap Kind = iota
	// OffHeap regions are anonymous memory mappings.
	OffHeap
)

func (k Kind) String() string {
	switch k {
	case Heap:
		return "heap"
	case OffHeap:
		return "offheap"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

var (
	// ErrPointerElements is returned when an off-heap region is requested for
	// an element type that contains pointers.
	ErrPointerElements = errors.New("block: off-heap element type contains pointers")
)

// Region is a contiguous run of entries of type E.
type Region[E any] struct {
	entries []E
	mapping *mmap.Mapping // non-nil for off-heap regions
	charged int64         // bytes charged to the acquirer
}

// Entries returns the region's entries. The slice is invalidated by Free.
func (r *Region[E]) Entries() []E {
	return r.entries
}

// Len returns the number of entries in the region.
func (r *Region[E]) Len() int {
	return len(r.entries)
}

// Charged returns the number of bytes charged for the region.
func (r *Region[E]) Charged() int64 {
	return r.charged
}

// EntrySize returns the in-memory size of one E.
func EntrySize[E any]() int {
	var zero E
	return int(unsafe.Sizeof(zero))
}

// Alloc returns a zeroed region of n entries and charges acq for chargeBytes.
// chargeBytes is the caller's view of the block size (header included) and
// must be at least the size of the entries themselves.
func Alloc[E any](kind Kind, acq Acquirer, n int, chargeBytes int64) (Region[E], error) {
	if n <= 0 {
		return Region[E]{}, nil
	}

	size, err := conv.MulInt(n, EntrySize[E]())
	if err != nil {
		return Region[E]{}, err
	}
	if chargeBytes < int64(size) {
		chargeBytes = int64(size)
	}

	if kind == OffHeap && hasPointers(reflect.TypeFor[E]()) {
		return Region[E]{}, ErrPointerElements
	}

	if acq != nil {
		if err := acq.AcquireMemory(chargeBytes); err != nil {
			return Region[E]{}, err
		}
	}

	r := Region[E]{charged: chargeBytes}

	switch kind {
	case OffHeap:
		if size == 0 {
			// Zero-sized elements need no backing memory.
			r.entries = make([]E, n)
			break
		}
		m, err := mmap.MapAnon(size)
		if err != nil {
			if acq != nil {
				acq.ReleaseMemory(chargeBytes)
			}
			return Region[E]{}, fmt.Errorf("failed to map anonymous memory for region: %w", err)
		}
		// Containers address entries by index, not in order.
		if err := m.Advise(mmap.AccessRandom); err != nil {
			_ = m.Close()
			if acq != nil {
				acq.ReleaseMemory(chargeBytes)
			}
			return Region[E]{}, fmt.Errorf("failed to advise region mapping: %w", err)
		}
		buf := m.Bytes()
		r.mapping = m
		r.entries = unsafe.Slice((*E)(unsafe.Pointer(&buf[0])), n) //nolint:gosec // unsafe is required for off-heap regions
	default:
		r.entries = make([]E, n)
	}

	return r, nil
}

// Realloc allocates a region of n entries, copies the first keep entries of
// old into it and frees old. On error old is left intact.
func Realloc[E any](kind Kind, acq Acquirer, old *Region[E], keep, n int, chargeBytes int64) (Region[E], error) {
	r, err := Alloc[E](kind, acq, n, chargeBytes)
	if err != nil {
		return Region[E]{}, err
	}
	if keep > len(old.entries) {
		keep = len(old.entries)
	}
	copy(r.entries, old.entries[:keep])
	old.Free(acq)
	return r, nil
}

// Free releases the region's memory and refunds acq. It is idempotent.
func (r *Region[E]) Free(acq Acquirer) {
	if r.mapping != nil {
		_ = r.mapping.Close()
		r.mapping = nil
	}
	if acq != nil && r.charged > 0 {
		acq.ReleaseMemory(r.charged)
	}
	r.entries = nil
	r.charged = 0
}

// hasPointers reports whether values of t contain pointers the garbage
// collector would need to see.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Interface, reflect.Chan, reflect.Func:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
