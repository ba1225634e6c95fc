package slotgo

import (
	"fmt"
	"math"
)

const (
	// MaxSlots is the number of indices a packed ID can address
	// (0 through MaxSlots-1).
	MaxSlots = 0xFFFFFF

	// MaxWideSlots is the number of indices a WideID can address.
	MaxWideSlots = math.MaxUint32 - 2

	indexMask = 0xFFFFFF
	genShift  = 24
	genMask8  = 0xFF
	genMask32 = math.MaxUint32
)

// ID identifies one element of a SlotMap: a 24-bit index and an 8-bit
// generation packed into 32 bits.
//
// The generation wraps after 256 reuses of the same slot, at which point a
// long-stale ID can resolve again. Use WideSlotMap when that matters.
type ID uint32

// None is the ID meaning "no element". Its index field lies beyond MaxSlots,
// so it never aliases an issued ID.
const None ID = math.MaxUint32

func makeID(index, gen uint32) ID {
	return ID(index&indexMask | (gen&genMask8)<<genShift)
}

// Index returns the dense index addressed by id.
func (id ID) Index() uint32 {
	return uint32(id) & indexMask
}

// Generation returns the generation id was issued with.
func (id ID) Generation() uint8 {
	return uint8(id >> genShift)
}

// IsNone reports whether id is None.
func (id ID) IsNone() bool {
	return id == None
}

func (id ID) String() string {
	if id.IsNone() {
		return "ID(none)"
	}
	return fmt.Sprintf("ID(%d@%d)", id.Index(), id.Generation())
}

// WideID identifies one element of a WideSlotMap with an unpacked 32-bit
// index and 32-bit generation.
type WideID struct {
	Index      uint32
	Generation uint32
}

// WideNone is the WideID meaning "no element".
var WideNone = WideID{Index: math.MaxUint32, Generation: math.MaxUint32}

// IsNone reports whether id is WideNone.
func (id WideID) IsNone() bool {
	return id == WideNone
}

func (id WideID) String() string {
	if id.IsNone() {
		return "WideID(none)"
	}
	return fmt.Sprintf("WideID(%d@%d)", id.Index, id.Generation)
}

// TableID identifies a SlotTable record by its dense index.
type TableID uint32

// TableNone is the TableID meaning "no record".
const TableNone TableID = math.MaxUint32

// IsNone reports whether id is TableNone.
func (id TableID) IsNone() bool {
	return id == TableNone
}
