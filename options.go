package slotgo

import (
	"github.com/hupe1980/slotgo/internal/block"
)

// ContainerKind names a container family in logs, metrics and errors.
type ContainerKind string

const (
	KindBuffer      ContainerKind = "buffer"
	KindSlotMap     ContainerKind = "slotmap"
	KindWideSlotMap ContainerKind = "wideslotmap"
	KindSlotTable   ContainerKind = "slottable"
)

type options struct {
	growth           GrowthFunc
	alignment        int
	reserved         int
	allocator        Allocator
	region           block.Kind
	logger           *Logger
	metricsCollector MetricsCollector
	flags            Flags
}

// Option configures a container at construction.
//
// Every container's zero value is ready to use with the defaults; options only
// exist for embeddings that need a different growth curve, alignment, memory
// source or observability hooks.
type Option func(*options)

// WithGrowth replaces the staircase growth curve.
//
// fn receives the current capacity and must return a strictly larger one;
// a function that does not make progress fails the grow with ErrInvalidGrowth.
// Slot tables ignore this option: their bucket mask requires power-of-two
// doubling.
//
// If nil is passed, DefaultGrowth is used.
func WithGrowth(fn GrowthFunc) Option {
	return func(o *options) {
		o.growth = fn
	}
}

// WithAlignment sets the byte boundary a block's size is rounded up to.
// n must be a power of two; other values keep DefaultAlignment.
func WithAlignment(n int) Option {
	return func(o *options) {
		if n > 0 && n&(n-1) == 0 {
			o.alignment = n
		}
	}
}

// WithReservedWords reserves n uint32 header words per container for caller
// metadata, reachable through Ext(). They count towards the block size.
func WithReservedWords(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.reserved = n
		}
	}
}

// WithAllocator charges every block allocation to a.
//
// Example with a memory budget shared by several containers:
//
//	alloc := slotgo.NewLimitAllocator(slotgo.LimitConfig{MemoryLimitBytes: 64 << 20})
//	m := slotgo.NewSlotMap[Particle](slotgo.WithAllocator(alloc))
//	t := slotgo.NewSlotTable[Entry](slotgo.WithAllocator(alloc))
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithOffHeap backs the container's dense region with anonymous memory
// mappings instead of the Go heap.
//
// The element type must not contain pointers (strings, slices, maps, ...);
// otherwise the first grow fails with ErrPointerElements.
func WithOffHeap() Option {
	return func(o *options) {
		o.region = block.OffHeap
	}
}

// WithLogger configures the logger used for grow, rehash and burn events.
// Pass nil to restore the default no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &slotgo.BasicMetricsCollector{}
//	m := slotgo.NewSlotMap[Particle](slotgo.WithMetricsCollector(metrics))
//	// ... later
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithFlags sets slot table behavior flags. Other containers ignore it.
func WithFlags(f Flags) Option {
	return func(o *options) {
		o.flags = f
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) policy() Policy {
	return Policy{Growth: o.growth, Alignment: o.alignment}
}

func (o *options) log() *Logger {
	if o.logger == nil {
		return defaultLogger
	}
	return o.logger
}

func (o *options) metrics() MetricsCollector {
	if o.metricsCollector == nil {
		return NoopMetricsCollector{}
	}
	return o.metricsCollector
}

// acquirer returns the allocator as a block.Acquirer, keeping a nil
// interface nil.
func (o *options) acquirer() block.Acquirer {
	if o.allocator == nil {
		return nil
	}
	return o.allocator
}

// headerBytes is the size of a block header of words fixed words plus the
// reserved caller words.
func (o *options) headerBytes(words int) int {
	return (words + o.reserved) * 4
}

func (o *options) ext() []uint32 {
	if o.reserved == 0 {
		return nil
	}
	return make([]uint32, o.reserved)
}
