// Package mmap provides anonymous memory mappings for off-heap container regions.
//
// # Overview
//
// Dense regions that hold pointer-free elements can live outside the Go heap.
// The garbage collector never scans them, and a released region is returned
// to the operating system immediately instead of waiting for a GC cycle.
//
// # Usage
//
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // zeroed, read-write
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE and madvise(2)
//   - Windows: VirtualAlloc/VirtualFree (advise is a no-op)
//
// # Safety
//
// Close is idempotent. Callers must not touch Bytes() after Close returns;
// the memory is unmapped and any access faults.
package mmap
