package slotgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slotgo/internal/block"
	"github.com/hupe1980/slotgo/internal/resource"
)

var (
	// ErrAllocationFailed is matched by every error from a mutating operation
	// that could not obtain memory. The container keeps its prior state.
	ErrAllocationFailed = errors.New("slotgo: allocation failed")

	// ErrCapacityExceeded is returned when a container cannot address another
	// slot (16,777,215 indices for the packed slot map). It also matches
	// ErrAllocationFailed.
	ErrCapacityExceeded = errors.New("slotgo: capacity exceeded")

	// ErrInvalidGrowth is returned when a growth function does not increase
	// the capacity it is given.
	ErrInvalidGrowth = errors.New("slotgo: growth function made no progress")

	// ErrNotFound is returned by Copy when the source identity does not resolve.
	ErrNotFound = errors.New("slotgo: identity not found")

	// ErrPointerElements is returned when WithOffHeap is used with an element
	// type that contains pointers.
	ErrPointerElements = block.ErrPointerElements

	// ErrMemoryLimitExceeded is returned by a LimitAllocator whose memory
	// limit would be exceeded.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrGrowthThrottled is returned by a LimitAllocator whose growth rate
	// limit refused the request.
	ErrGrowthThrottled = resource.ErrGrowthThrottled
)

// GrowError describes a failed attempt to enlarge a container's block.
//
// It matches ErrAllocationFailed via errors.Is; the underlying cause (if any)
// is reachable through errors.Is/errors.As as well.
type GrowError struct {
	Kind  ContainerKind
	From  int
	To    int
	cause error
}

func (e *GrowError) Error() string {
	if e.To > 0 {
		return fmt.Sprintf("slotgo: grow %s from %d to %d: %v", e.Kind, e.From, e.To, e.cause)
	}
	return fmt.Sprintf("slotgo: grow %s from %d: %v", e.Kind, e.From, e.cause)
}

func (e *GrowError) Unwrap() []error { return []error{ErrAllocationFailed, e.cause} }
