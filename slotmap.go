package slotgo

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// SlotMap is a generational element pool with packed 32-bit identities.
//
// Add, At and Remove are O(1). Removed slots are threaded onto a freelist
// through their own storage and reused LIFO; each reuse bumps the slot's 8-bit
// generation so identities issued before the removal stop resolving.
// Identities survive growth; element pointers do not.
//
// T must embed Slot. The zero value is an empty map ready to use:
//
//	var m slotgo.SlotMap[Particle, *Particle]
//	p, id, err := m.Add(Particle{X: 1})
type SlotMap[T any, PT Record[T]] struct {
	pool slotPool[T, PT]
}

// NewSlotMap creates an empty SlotMap. PT is inferred:
//
//	m := slotgo.NewSlotMap[Particle]()
func NewSlotMap[T any, PT Record[T]](opts ...Option) *SlotMap[T, PT] {
	o := newOptions(opts)
	return &SlotMap[T, PT]{pool: slotPool[T, PT]{opts: o, ext: o.ext()}}
}

// Add stores record in a free slot and returns a pointer to it and its
// identity. On failure it returns nil, None and an error matching
// ErrAllocationFailed (or ErrCapacityExceeded past MaxSlots); the map is
// unchanged.
func (m *SlotMap[T, PT]) Add(record T) (*T, ID, error) {
	e, idx, gen, err := m.pool.add(KindSlotMap, MaxSlots, record)
	if err != nil {
		return nil, None, err
	}
	return e, makeID(idx, gen), nil
}

// At returns the element identified by id, or nil if id is stale, foreign or
// None.
func (m *SlotMap[T, PT]) At(id ID) *T {
	return m.pool.at(id.Index(), uint32(id.Generation()), genMask8)
}

// Set replaces the element identified by id, keeping its identity.
// It reports false if id does not resolve.
func (m *SlotMap[T, PT]) Set(id ID, v T) bool {
	return m.pool.set(id.Index(), uint32(id.Generation()), genMask8, v)
}

// Remove vacates the slot identified by id and returns the removed element.
// id, and every copy of it, stops resolving. It reports false if id does not
// resolve.
func (m *SlotMap[T, PT]) Remove(id ID) (T, bool) {
	return m.pool.remove(id.Index(), uint32(id.Generation()), genMask8)
}

// Copy adds a shallow copy of the element identified by id.
// It fails with ErrNotFound if id does not resolve.
func (m *SlotMap[T, PT]) Copy(id ID) (*T, ID, error) {
	src := m.At(id)
	if src == nil {
		return nil, None, ErrNotFound
	}
	return m.Add(*src)
}

// IDOf returns the identity of the live element e points to, or None if e
// does not point into the map's current block.
func (m *SlotMap[T, PT]) IDOf(e *T) ID {
	idx, ok := m.pool.indexOf(e)
	if !ok {
		return None
	}
	return makeID(idx, PT(e).slot().gen)
}

// Burn clears every vacant slot and permanently disables slot reuse, so
// Dense can be scanned without consulting the freelist. Vacant slots read
// as zero values; callers need their own vacancy marker (e.g. a zero key).
// Use it only right before discarding the map.
func (m *SlotMap[T, PT]) Burn() {
	m.pool.burn(KindSlotMap)
}

// Used returns the number of slots ever handed out, vacant ones included.
func (m *SlotMap[T, PT]) Used() int {
	return int(m.pool.used)
}

// Count returns the number of live elements.
func (m *SlotMap[T, PT]) Count() int {
	return m.pool.count()
}

// Allocated returns the number of slots the current block can hold.
func (m *SlotMap[T, PT]) Allocated() int {
	return m.pool.region.Len()
}

// Dense returns the first Used slots, vacant ones included, in index order.
// It aliases the map's block.
func (m *SlotMap[T, PT]) Dense() []T {
	return m.pool.dense()
}

// All returns an iterator over live elements in index order.
func (m *SlotMap[T, PT]) All() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		for idx, e := range m.pool.all() {
			if !yield(makeID(idx, PT(e).slot().gen), e) {
				return
			}
		}
	}
}

// Occupied returns the set of indices holding live elements.
func (m *SlotMap[T, PT]) Occupied() *roaring.Bitmap {
	return m.pool.occupancy()
}

// Ext returns the reserved caller header words (see WithReservedWords).
func (m *SlotMap[T, PT]) Ext() []uint32 {
	return m.pool.ext
}

// Release frees the whole block at once. The map is empty and reusable
// afterwards; generations restart, so identities issued before Release may
// alias elements added after it.
func (m *SlotMap[T, PT]) Release() {
	m.pool.release()
}
