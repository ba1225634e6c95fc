// Package slotgo provides embeddable, flat-memory containers with stable
// identities: a growable buffer, a generational slot map (packed and wide
// identities) and a chaining hash table over a dense record region.
//
// Every container keeps its elements in one contiguous block that it owns
// exclusively. Growing may move the block, so element pointers are only valid
// until the next mutating call. Identities are the only handles that survive.
//
// # Quick Start
//
// Slot map records embed Slot, which holds the generation and, once the slot
// is vacated, the freelist link:
//
//	type Particle struct {
//	    slotgo.Slot
//	    X, Y float32
//	}
//
//	m := slotgo.NewSlotMap[Particle]()
//	p, id, err := m.Add(Particle{X: 1, Y: 2})
//	if err != nil {
//	    // errors.Is(err, slotgo.ErrAllocationFailed)
//	}
//	p.X = 3                // valid until the next Add
//	if p := m.At(id); p != nil {
//	    fmt.Println(p.X)   // 3
//	}
//	m.Remove(id)
//	m.At(id)               // nil, forever (within 255 reuses of the slot)
//
// Slot tables store the key inside the record and take the hash and a match
// function from the caller:
//
//	type Entry struct {
//	    Key   string
//	    Value int
//	}
//
//	t := slotgo.NewSlotTable[Entry](slotgo.WithFlags(slotgo.Ordered))
//	e, _, _ := t.Add(slotgo.HashString("a"))
//	*e = Entry{Key: "a", Value: 1}
//
//	got, id := t.Find(slotgo.HashString("a"), func(e *Entry) bool { return e.Key == "a" })
//
// # Identities
//
//   - ID: 24-bit index + 8-bit generation. At most MaxSlots slots; a slot's
//     generation wraps after 256 reuses.
//   - WideID: 32-bit index + 32-bit generation. No practical limits.
//   - TableID: dense record index. Stable across grows only with FixedID.
//
// Each has a None value that never aliases an issued identity.
//
// # Growth
//
// Buffers and slot maps grow along a staircase (10, 100, 1,000, 10,000, then
// doubling), rounded up to a 16-byte block boundary; slot tables double from
// 8. The curve, the alignment, a memory budget (NewLimitAllocator) and
// off-heap backing (WithOffHeap) are configured per container.
//
// # Failure
//
// A mutating call that cannot obtain memory returns an error matching
// ErrAllocationFailed together with a nil pointer and None identity, and
// leaves the container exactly as it was. Lookups of stale or foreign
// identities return nil; that is a normal result, not an error.
//
// # Concurrency
//
// Containers are not safe for concurrent use. Callers must serialize all
// access, reads included, when any goroutine may mutate.
package slotgo
