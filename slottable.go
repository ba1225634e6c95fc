package slotgo

import (
	"iter"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/slotgo/internal/block"
	"github.com/hupe1980/slotgo/internal/conv"
)

// Flags select slot table behavior at construction.
type Flags uint8

const (
	// Ordered reuses tombstones before appending, so a record added after a
	// removal takes the most recently vacated position.
	Ordered Flags = 1 << iota

	// FixedID never moves or renumbers a record once created. Resizes keep
	// tombstones in place and tombstones are never reused, so a TableID is
	// valid forever or tombstoned forever.
	FixedID
)

const (
	// tombstone is the hash of a removed record. Live hashes equal to it are
	// stored as tombstone-1.
	tombstone = math.MaxUint32

	// tableHeaderWords is the fixed header of a slot table block: allocated,
	// used, active and tombstone chain head.
	tableHeaderWords = 4

	// maxTableSlots is the largest table capacity; it fits an int on every platform.
	maxTableSlots = 1 << 30
)

type tableRecord[T any] struct {
	hash  uint32
	next  uint32
	value T
}

// SlotTable is a hash index over a dense record region.
//
// Records live in insertion order in one contiguous region; a power-of-two
// bucket array holds the head of each collision chain, and chains are threaded
// through the records' own link fields. Removal leaves a tombstone that is
// dropped by the next grow (or kept forever with FixedID).
//
// Keys are part of T; the table only sees the 32-bit hash and a caller
// supplied match function. The zero value is an empty table ready to use.
type SlotTable[T any] struct {
	opts      options
	buckets   block.Region[uint32]
	records   block.Region[tableRecord[T]]
	used      uint32
	active    uint32
	tombs     uint32 // tombstone chain head, valid while tombCount > 0
	tombCount uint32
	ext       []uint32
}

// NewSlotTable creates an empty SlotTable.
func NewSlotTable[T any](opts ...Option) *SlotTable[T] {
	o := newOptions(opts)
	return &SlotTable[T]{opts: o, ext: o.ext()}
}

// Flags returns the flags the table was created with.
func (t *SlotTable[T]) Flags() Flags {
	return t.opts.flags
}

func fixHash(h uint32) uint32 {
	if h == tombstone {
		return tombstone - 1
	}
	return h
}

// Add creates a zeroed record under hash and returns a pointer to it and its
// identity. The caller fills in the key and value through the pointer.
//
// Add does not check for an existing record with the same key. On failure it
// returns nil, TableNone and an error matching ErrAllocationFailed; the table
// is unchanged.
func (t *SlotTable[T]) Add(hash uint32) (*T, TableID, error) {
	h := fixHash(hash)

	var idx uint32
	if t.opts.flags&Ordered != 0 && t.opts.flags&FixedID == 0 && t.tombCount > 0 {
		idx = t.tombs
		t.tombs = t.records.Entries()[idx].next
		t.tombCount--
	} else {
		if int(t.used) == t.records.Len() {
			if err := t.rehash(); err != nil {
				return nil, TableNone, err
			}
		}
		idx = t.used
		t.used++
	}

	r := &t.records.Entries()[idx]
	var zero T
	r.value = zero
	r.hash = h
	t.link(idx, r)
	t.active++
	return &r.value, TableID(idx), nil
}

func (t *SlotTable[T]) link(idx uint32, r *tableRecord[T]) {
	buckets := t.buckets.Entries()
	b := r.hash & uint32(len(buckets)-1)
	r.next = buckets[b]
	buckets[b] = idx
}

// Find walks the bucket chain for hash and returns the first record for
// which match reports true, along with its identity. It returns nil and
// TableNone if there is none.
func (t *SlotTable[T]) Find(hash uint32, match func(*T) bool) (*T, TableID) {
	if t.records.Len() == 0 {
		return nil, TableNone
	}
	h := fixHash(hash)
	records := t.records.Entries()
	buckets := t.buckets.Entries()

	for idx := buckets[h&uint32(len(buckets)-1)]; idx != noSlot; idx = records[idx].next {
		r := &records[idx]
		if r.hash == h && match(&r.value) {
			return &r.value, TableID(idx)
		}
	}
	return nil, TableNone
}

// Remove tombstones the first record under hash for which match reports true
// and returns a copy of it. The record's storage is reclaimed by the next
// grow unless the table was created with FixedID.
func (t *SlotTable[T]) Remove(hash uint32, match func(*T) bool) (T, bool) {
	var zero T
	if t.records.Len() == 0 {
		return zero, false
	}
	h := fixHash(hash)
	records := t.records.Entries()
	buckets := t.buckets.Entries()
	b := h & uint32(len(buckets)-1)

	prev := uint32(noSlot)
	for idx := buckets[b]; idx != noSlot; prev, idx = idx, records[idx].next {
		r := &records[idx]
		if r.hash != h || !match(&r.value) {
			continue
		}

		if prev == noSlot {
			buckets[b] = r.next
		} else {
			records[prev].next = r.next
		}

		out := r.value
		r.value = zero
		r.hash = tombstone
		r.next = noSlot
		if t.tombCount > 0 {
			r.next = t.tombs
		}
		t.tombs = idx
		t.tombCount++
		t.active--
		return out, true
	}
	return zero, false
}

// FindKey is Find with an explicit key and a comparator returning 0 on match.
func FindKey[T, K any](t *SlotTable[T], hash uint32, key K, cmp func(K, *T) int) (*T, TableID) {
	return t.Find(hash, func(v *T) bool { return cmp(key, v) == 0 })
}

// RemoveKey is Remove with an explicit key and a comparator returning 0 on
// match.
func RemoveKey[T, K any](t *SlotTable[T], hash uint32, key K, cmp func(K, *T) int) (T, bool) {
	return t.Remove(hash, func(v *T) bool { return cmp(key, v) == 0 })
}

// At returns the live record identified by id, or nil if id is out of range
// or tombstoned.
func (t *SlotTable[T]) At(id TableID) *T {
	if uint32(id) >= t.used {
		return nil
	}
	r := &t.records.Entries()[id]
	if r.hash == tombstone {
		return nil
	}
	return &r.value
}

// rehash grows the table to the next power of two and rebuilds the bucket
// array. Without FixedID live records are compacted to the front in stable
// order and tombstones dropped; with FixedID every record, tombstones
// included, keeps its index.
func (t *SlotTable[T]) rehash() error {
	start := time.Now()
	from := t.records.Len()
	to := TableCapacity(from)

	mask, err := conv.IntToUint32(to - 1)
	var newBuckets block.Region[uint32]
	var newRecords block.Region[tableRecord[T]]
	if err == nil {
		newBuckets, newRecords, err = t.allocTable(to)
	}
	if err != nil {
		err = &GrowError{Kind: KindSlotTable, From: from, To: to, cause: err}
		t.opts.log().LogGrow(KindSlotTable, from, to, err)
		t.opts.metrics().RecordGrow(KindSlotTable, from, to, time.Since(start), err)
		return err
	}

	buckets := newBuckets.Entries()
	for i := range buckets {
		buckets[i] = noSlot
	}

	fixed := t.opts.flags&FixedID != 0
	old := t.records.Entries()
	dst := newRecords.Entries()

	var n, dropped uint32
	for i := uint32(0); i < t.used; i++ {
		r := &old[i]
		if r.hash == tombstone && !fixed {
			dropped++
			continue
		}
		d := &dst[n]
		*d = *r
		if d.hash != tombstone {
			b := d.hash & mask
			d.next = buckets[b]
			buckets[b] = n
		}
		n++
	}

	acq := t.opts.acquirer()
	t.buckets.Free(acq)
	t.records.Free(acq)
	t.buckets = newBuckets
	t.records = newRecords
	t.used = n
	if !fixed {
		t.tombs = noSlot
		t.tombCount = 0
	}

	t.opts.log().LogGrow(KindSlotTable, from, to, nil)
	t.opts.log().LogRehash(from, to, int(dropped), fixed)
	t.opts.metrics().RecordGrow(KindSlotTable, from, to, time.Since(start), nil)
	t.opts.metrics().RecordRehash(from, to, int(dropped), time.Since(start))
	return nil
}

func (t *SlotTable[T]) allocTable(to int) (block.Region[uint32], block.Region[tableRecord[T]], error) {
	if to > maxTableSlots {
		return block.Region[uint32]{}, block.Region[tableRecord[T]]{}, ErrCapacityExceeded
	}

	bucketBytes, err := conv.MulInt(to, 4)
	if err != nil {
		return block.Region[uint32]{}, block.Region[tableRecord[T]]{}, err
	}
	recordBytes, err := t.opts.policy().Bytes(to, block.EntrySize[tableRecord[T]](), t.opts.headerBytes(tableHeaderWords))
	if err != nil {
		return block.Region[uint32]{}, block.Region[tableRecord[T]]{}, err
	}

	acq := t.opts.acquirer()
	buckets, err := block.Alloc[uint32](t.opts.region, acq, to, int64(bucketBytes))
	if err != nil {
		return block.Region[uint32]{}, block.Region[tableRecord[T]]{}, err
	}
	records, err := block.Alloc[tableRecord[T]](t.opts.region, acq, to, int64(recordBytes))
	if err != nil {
		buckets.Free(acq)
		return block.Region[uint32]{}, block.Region[tableRecord[T]]{}, err
	}
	return buckets, records, nil
}

// Used returns the number of record positions consumed, tombstones included.
func (t *SlotTable[T]) Used() int {
	return int(t.used)
}

// Count returns the number of live records.
func (t *SlotTable[T]) Count() int {
	return int(t.active)
}

// Allocated returns the number of records the current block can hold.
// It equals the bucket count.
func (t *SlotTable[T]) Allocated() int {
	return t.records.Len()
}

// MemUsage returns the size in bytes of the table's block: header, bucket
// array and record region.
func (t *SlotTable[T]) MemUsage() int {
	n := t.records.Len()
	return t.opts.headerBytes(tableHeaderWords) + n*(4+block.EntrySize[tableRecord[T]]())
}

// All returns an iterator over live records in dense order.
func (t *SlotTable[T]) All() iter.Seq2[TableID, *T] {
	return func(yield func(TableID, *T) bool) {
		records := t.records.Entries()
		for i := uint32(0); i < t.used; i++ {
			r := &records[i]
			if r.hash == tombstone {
				continue
			}
			if !yield(TableID(i), &r.value) {
				return
			}
		}
	}
}

// Tombstones returns the set of positions holding tombstones.
func (t *SlotTable[T]) Tombstones() *roaring.Bitmap {
	rb := roaring.New()
	records := t.records.Entries()
	for i := uint32(0); i < t.used; i++ {
		if records[i].hash == tombstone {
			rb.Add(i)
		}
	}
	return rb
}

// Ext returns the reserved caller header words (see WithReservedWords).
func (t *SlotTable[T]) Ext() []uint32 {
	return t.ext
}

// Release frees the whole block at once. The table is empty and reusable
// afterwards.
func (t *SlotTable[T]) Release() {
	acq := t.opts.acquirer()
	t.buckets.Free(acq)
	t.records.Free(acq)
	t.used = 0
	t.active = 0
	t.tombs = noSlot
	t.tombCount = 0
}
