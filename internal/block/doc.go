// Package block provides the typed, contiguous backing regions of slotgo's
// containers.
//
// A Region holds n entries of one element type in a single allocation. It is
// either an ordinary Go slice (Heap) or an anonymous mapping outside the Go
// heap (OffHeap). Off-heap regions are invisible to the garbage collector, so
// they only accept element types without pointers.
//
// # Accounting
//
// Every allocation is charged to an Acquirer before any memory is touched and
// refunded when the region is freed. A refused charge leaves the caller's
// current region untouched, which is how containers keep their prior state on
// allocation failure.
//
// # Safety
//
// Regions are not safe for concurrent use. After Realloc or Free, slices
// obtained from Entries of the old region must not be used.
package block
