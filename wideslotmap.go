package slotgo

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// wideSlotLimit is MaxWideSlots clamped to int on 32-bit platforms.
const wideSlotLimit = int(min(uint64(MaxWideSlots), uint64(math.MaxInt)))

// WideSlotMap is a SlotMap whose identities are an unpacked 32-bit index and
// 32-bit generation.
//
// It lifts the 16,777,215 slot ceiling and makes generation wraparound
// practically unreachable, at the price of 8-byte identities. T must embed
// Slot, as for SlotMap.
type WideSlotMap[T any, PT Record[T]] struct {
	pool slotPool[T, PT]
}

// NewWideSlotMap creates an empty WideSlotMap.
func NewWideSlotMap[T any, PT Record[T]](opts ...Option) *WideSlotMap[T, PT] {
	o := newOptions(opts)
	return &WideSlotMap[T, PT]{pool: slotPool[T, PT]{opts: o, ext: o.ext()}}
}

// Add stores record in a free slot and returns a pointer to it and its
// identity, or nil, WideNone and an error matching ErrAllocationFailed.
func (m *WideSlotMap[T, PT]) Add(record T) (*T, WideID, error) {
	e, idx, gen, err := m.pool.add(KindWideSlotMap, wideSlotLimit, record)
	if err != nil {
		return nil, WideNone, err
	}
	return e, WideID{Index: idx, Generation: gen}, nil
}

// At returns the element identified by id, or nil.
func (m *WideSlotMap[T, PT]) At(id WideID) *T {
	return m.pool.at(id.Index, id.Generation, genMask32)
}

// Set replaces the element identified by id, keeping its identity.
func (m *WideSlotMap[T, PT]) Set(id WideID, v T) bool {
	return m.pool.set(id.Index, id.Generation, genMask32, v)
}

// Remove vacates the slot identified by id and returns the removed element.
func (m *WideSlotMap[T, PT]) Remove(id WideID) (T, bool) {
	return m.pool.remove(id.Index, id.Generation, genMask32)
}

// Copy adds a shallow copy of the element identified by id.
func (m *WideSlotMap[T, PT]) Copy(id WideID) (*T, WideID, error) {
	src := m.At(id)
	if src == nil {
		return nil, WideNone, ErrNotFound
	}
	return m.Add(*src)
}

// IDOf returns the identity of the live element e points to, or WideNone.
func (m *WideSlotMap[T, PT]) IDOf(e *T) WideID {
	idx, ok := m.pool.indexOf(e)
	if !ok {
		return WideNone
	}
	return WideID{Index: idx, Generation: PT(e).slot().gen}
}

// Burn clears every vacant slot and permanently disables slot reuse.
func (m *WideSlotMap[T, PT]) Burn() {
	m.pool.burn(KindWideSlotMap)
}

// Used returns the number of slots ever handed out, vacant ones included.
func (m *WideSlotMap[T, PT]) Used() int { return int(m.pool.used) }

// Count returns the number of live elements.
func (m *WideSlotMap[T, PT]) Count() int { return m.pool.count() }

// Allocated returns the number of slots the current block can hold.
func (m *WideSlotMap[T, PT]) Allocated() int { return m.pool.region.Len() }

// Dense returns the first Used slots, vacant ones included, in index order.
// It aliases the map's block.
func (m *WideSlotMap[T, PT]) Dense() []T { return m.pool.dense() }

// Ext returns the reserved caller header words (see WithReservedWords).
func (m *WideSlotMap[T, PT]) Ext() []uint32 { return m.pool.ext }

// Release frees the whole block at once. Generations restart, so identities
// issued before Release may alias elements added after it.
func (m *WideSlotMap[T, PT]) Release() { m.pool.release() }

// All returns an iterator over live elements in index order.
func (m *WideSlotMap[T, PT]) All() iter.Seq2[WideID, *T] {
	return func(yield func(WideID, *T) bool) {
		for idx, e := range m.pool.all() {
			if !yield(WideID{Index: idx, Generation: PT(e).slot().gen}, e) {
				return
			}
		}
	}
}

// Occupied returns the set of indices holding live elements.
func (m *WideSlotMap[T, PT]) Occupied() *roaring.Bitmap {
	return m.pool.occupancy()
}
