package slotgo

import (
	"iter"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/slotgo/internal/block"
)

// slotHeaderWords is the fixed header of a slot map block: allocated, used,
// freelist head and free count.
const slotHeaderWords = 4

// slotPool is the generational element pool shared by SlotMap and
// WideSlotMap. They differ only in identity encoding: genMask bounds the
// generation and limit bounds the index.
type slotPool[T any, PT Record[T]] struct {
	opts      options
	region    block.Region[T]
	used      uint32
	free      uint32 // freelist head, valid while freeCount > 0
	freeCount uint32
	burned    bool
	ext       []uint32
	limit     int // index ceiling override; 0 uses the caller's limit
}

func (p *slotPool[T, PT]) header(i uint32) *Slot {
	return PT(&p.region.Entries()[i]).slot()
}

// alloc claims a slot, popping the freelist before appending, and returns
// its index and the generation the new identity must carry.
func (p *slotPool[T, PT]) alloc(kind ContainerKind, limit int) (uint32, uint32, error) {
	if p.freeCount > 0 && !p.burned {
		idx := p.free
		s := p.header(idx)
		p.free = s.next
		p.freeCount--
		return idx, s.gen, nil
	}

	if p.limit > 0 {
		limit = p.limit
	}
	if int(p.used) == p.region.Len() {
		if err := grow(&p.opts, kind, &p.region, int(p.used), 1, slotHeaderWords, limit); err != nil {
			return 0, 0, err
		}
	}

	idx := p.used
	p.used++
	return idx, p.header(idx).gen, nil
}

func (p *slotPool[T, PT]) add(kind ContainerKind, limit int, record T) (*T, uint32, uint32, error) {
	idx, gen, err := p.alloc(kind, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	e := &p.region.Entries()[idx]
	*e = record
	s := PT(e).slot()
	s.gen = gen
	s.next = slotOccupied
	return e, idx, gen, nil
}

func (p *slotPool[T, PT]) at(idx, gen, genMask uint32) *T {
	if idx >= p.used {
		return nil
	}
	e := &p.region.Entries()[idx]
	s := PT(e).slot()
	if s.next != slotOccupied || s.gen != gen&genMask {
		return nil
	}
	return e
}

func (p *slotPool[T, PT]) set(idx, gen, genMask uint32, v T) bool {
	e := p.at(idx, gen, genMask)
	if e == nil {
		return false
	}
	*e = v
	s := PT(e).slot()
	s.gen = gen & genMask
	s.next = slotOccupied
	return true
}

// remove turns the slot into a free record {gen+1, next-free} and pushes it
// onto the freelist.
func (p *slotPool[T, PT]) remove(idx, gen, genMask uint32) (T, bool) {
	var zero T
	e := p.at(idx, gen, genMask)
	if e == nil {
		return zero, false
	}
	out := *e
	next := (PT(e).slot().gen + 1) & genMask

	*e = zero
	s := PT(e).slot()
	s.gen = next
	if p.burned {
		s.next = noSlot
	} else {
		s.next = p.free
		if p.freeCount == 0 {
			s.next = noSlot
		}
		p.free = idx
	}
	p.freeCount++
	return out, true
}

// indexOf maps a pointer into the dense region back to its index.
func (p *slotPool[T, PT]) indexOf(e *T) (uint32, bool) {
	entries := p.region.Entries()
	if e == nil || p.used == 0 {
		return 0, false
	}
	size := unsafe.Sizeof(entries[0])
	base := uintptr(unsafe.Pointer(&entries[0]))
	addr := uintptr(unsafe.Pointer(e))
	if addr < base || (addr-base)%size != 0 {
		return 0, false
	}
	idx := (addr - base) / size
	if idx >= uintptr(p.used) || PT(e).slot().next != slotOccupied {
		return 0, false
	}
	return uint32(idx), true
}

// burn clears every vacant slot and disables the freelist for good.
// Vacant slots keep their generation so stale identities still miss.
func (p *slotPool[T, PT]) burn(kind ContainerKind) {
	cleared := 0
	if !p.burned {
		var zero T
		idx := p.free
		for n := p.freeCount; n > 0; n-- {
			e := &p.region.Entries()[idx]
			s := PT(e).slot()
			gen, next := s.gen, s.next
			*e = zero
			s = PT(e).slot()
			s.gen = gen
			s.next = noSlot
			idx = next
			cleared++
		}
	}
	p.burned = true
	p.free = noSlot

	p.opts.log().LogBurn(kind, cleared)
	p.opts.metrics().RecordBurn(kind, cleared)
}

func (p *slotPool[T, PT]) occupied(idx uint32) bool {
	return p.header(idx).next == slotOccupied
}

func (p *slotPool[T, PT]) all() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		entries := p.region.Entries()
		for i := uint32(0); i < p.used; i++ {
			e := &entries[i]
			if PT(e).slot().next != slotOccupied {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

func (p *slotPool[T, PT]) occupancy() *roaring.Bitmap {
	rb := roaring.New()
	for i := uint32(0); i < p.used; i++ {
		if p.occupied(i) {
			rb.Add(i)
		}
	}
	return rb
}

func (p *slotPool[T, PT]) dense() []T {
	if p.used == 0 {
		return nil
	}
	return p.region.Entries()[:p.used:p.used]
}

func (p *slotPool[T, PT]) release() {
	p.region.Free(p.opts.acquirer())
	p.used = 0
	p.free = noSlot
	p.freeCount = 0
	p.burned = false
}

func (p *slotPool[T, PT]) count() int {
	return int(p.used - p.freeCount)
}
