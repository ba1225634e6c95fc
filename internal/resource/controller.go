package resource

import (
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when the memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
	// ErrGrowthThrottled is returned when the growth rate limit refuses a request.
	ErrGrowthThrottled = errors.New("growth rate limit exceeded")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// GrowBytesPerSec is the sustained rate at which containers may acquire
	// new memory. The burst equals one second worth of bytes, so a single
	// request larger than GrowBytesPerSec is always refused.
	// If 0, unlimited.
	GrowBytesPerSec int64

	// now is overridden by tests.
	now func() time.Time
}

// Controller tracks and limits memory acquired by containers.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	growLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.now == nil {
		cfg.now = time.Now
	}

	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.GrowBytesPerSec > 0 {
		c.growLimiter = rate.NewLimiter(rate.Limit(cfg.GrowBytesPerSec), int(cfg.GrowBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrGrowthThrottled or ErrMemoryLimitExceeded if the request is refused.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	if c.growLimiter != nil && !c.growLimiter.AllowN(c.cfg.now(), int(bytes)) {
		if c.memSem != nil {
			c.memSem.Release(bytes)
		}
		return ErrGrowthThrottled
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}
