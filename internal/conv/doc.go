// Package conv provides checked integer conversions and arithmetic for size
// computations.
//
// Container counters are uint32 while Go lengths are int; byte sizes are the
// product of an entry count and an entry size. Both can overflow on large
// requests, and an overflowed size must surface as an allocation failure rather
// than a silently truncated block.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices bounded by a uint32 counter), use direct type casts instead.
package conv
