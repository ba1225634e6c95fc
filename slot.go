package slotgo

import "math"

const (
	// noSlot terminates free and tombstone chains and marks empty buckets.
	noSlot = math.MaxUint32
	// slotOccupied is the free-chain link of a slot holding a live record.
	slotOccupied = math.MaxUint32 - 1
)

// Slot is the header every slot map record embeds:
//
//	type Particle struct {
//	    slotgo.Slot
//	    X, Y float32
//	}
//
// While the record is live it holds the slot's generation. Once the record is
// removed the slot's storage becomes a free record: the bumped generation and
// the link to the next free slot. Embedding Slot is what makes a record large
// enough to host that overlay; a type without it does not satisfy Record.
//
// Assigning a whole record through an element pointer resets the header and
// breaks the slot's identity. Assign fields, or use Set.
type Slot struct {
	gen  uint32
	next uint32
}

func (s *Slot) slot() *Slot { return s }

// Generation returns the generation of the slot. It is only meaningful for a
// record obtained from a slot map.
func (s *Slot) Generation() uint32 { return s.gen }

// Record is satisfied by *T when T embeds Slot.
type Record[T any] interface {
	*T
	slot() *Slot
}
