// Package testutil provides testing utilities for slotgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for keys and
// randomized operation sequences used by model-based container tests.
//
// # Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Keys(1000, 12) // 1000 distinct 12-byte keys
//
// # Operation sequences
//
//	for _, op := range rng.Ops(10_000, 0.6) {
//	    switch op {
//	    case testutil.OpAdd: ...
//	    case testutil.OpRemove: ...
//	    }
//	}
package testutil
