package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint32 returns a pseudo-random uint32.
func (r *RNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint32()
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Keys returns n distinct random keys of the given length.
// length must be large enough for n distinct keys to exist.
func (r *RNG) Keys(n, length int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, n)
	keys := make([]string, 0, n)
	buf := make([]byte, length)
	for len(keys) < n {
		for i := range buf {
			buf[i] = keyAlphabet[r.rand.Intn(len(keyAlphabet))]
		}
		k := string(buf)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Op is one step of a randomized container workload.
type Op uint8

const (
	// OpAdd inserts a new element.
	OpAdd Op = iota
	// OpRemove removes a random live element (or is a no-op when empty).
	OpRemove
	// OpLookup looks up a random live or stale identity.
	OpLookup
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "lookup"
	}
}

// Ops returns n operations. addRatio is the share of adds; the remainder is
// split evenly between removes and lookups.
func (r *RNG) Ops(n int, addRatio float64) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]Op, n)
	for i := range ops {
		f := r.rand.Float64()
		switch {
		case f < addRatio:
			ops[i] = OpAdd
		case f < addRatio+(1-addRatio)/2:
			ops[i] = OpRemove
		default:
			ops[i] = OpLookup
		}
	}
	return ops
}
