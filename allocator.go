package slotgo

import (
	"github.com/hupe1980/slotgo/internal/resource"
)

// Allocator is the reallocation strategy hook. Every block a container
// allocates is charged with AcquireMemory before memory is touched and
// refunded with ReleaseMemory when the block is replaced or released.
//
// A non-nil error from AcquireMemory fails the mutating call with an error
// matching ErrAllocationFailed and leaves the container unchanged.
// AcquireMemory must not block.
type Allocator interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// LimitConfig configures a LimitAllocator.
type LimitConfig struct {
	// MemoryLimitBytes caps the bytes held by all containers sharing the
	// allocator. If 0, usage is only tracked.
	MemoryLimitBytes int64

	// GrowBytesPerSec caps the sustained rate of new allocations. A single
	// block larger than GrowBytesPerSec is always refused. If 0, unlimited.
	GrowBytesPerSec int64
}

// LimitAllocator is an Allocator enforcing a memory budget and an optional
// growth rate. It is safe to share between containers and goroutines.
type LimitAllocator struct {
	rc *resource.Controller
}

// NewLimitAllocator creates a LimitAllocator.
func NewLimitAllocator(cfg LimitConfig) *LimitAllocator {
	return &LimitAllocator{
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes: cfg.MemoryLimitBytes,
			GrowBytesPerSec:  cfg.GrowBytesPerSec,
		}),
	}
}

// AcquireMemory implements Allocator.
func (a *LimitAllocator) AcquireMemory(bytes int64) error {
	return a.rc.AcquireMemory(bytes)
}

// ReleaseMemory implements Allocator.
func (a *LimitAllocator) ReleaseMemory(bytes int64) {
	a.rc.ReleaseMemory(bytes)
}

// MemoryUsage returns the bytes currently held by containers using a.
func (a *LimitAllocator) MemoryUsage() int64 {
	return a.rc.MemoryUsage()
}

// MemoryLimit returns the configured limit (0 if unlimited).
func (a *LimitAllocator) MemoryLimit() int64 {
	return a.rc.MemoryLimit()
}
