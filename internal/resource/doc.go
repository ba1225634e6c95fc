// Package resource implements the growth budget behind slotgo's limit allocator.
//
// A Controller governs two resources, both fail-fast:
//
//   - Memory: a hard ceiling on the bytes held by all containers sharing the
//     controller (weighted semaphore, TryAcquire only)
//   - Growth rate: a token bucket on bytes requested per second by growing
//     containers, so a runaway insert loop fails instead of exhausting memory
//
// # Architecture
//
//	┌───────────────────────────────────────────┐
//	│                Controller                 │
//	├─────────────────────┬─────────────────────┤
//	│  Memory Limit       │  Growth Throttle    │
//	│  (semaphore)        │  (token bucket)     │
//	├─────────────────────┼─────────────────────┤
//	│  AcquireMemory      │  checked inside     │
//	│  ReleaseMemory      │  AcquireMemory      │
//	│  MemoryUsage        │                     │
//	└─────────────────────┴─────────────────────┘
//
// Nothing ever blocks. Containers are single-threaded and have no suspension
// points, so a refused request is reported to the caller immediately:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded or ErrGrowthThrottled
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Thread Safety
//
// Controller methods are safe for concurrent use, so one controller can
// budget many containers owned by different goroutines.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
