package slotgo

import "github.com/hupe1980/slotgo/internal/hash"

// HashString returns the h*31+c hash of s, suitable for SlotTable buckets.
func HashString(s string) uint32 {
	return hash.String(s)
}

// HashBytes returns the CRC32-C hash of b, suitable for SlotTable buckets.
func HashBytes(b []byte) uint32 {
	return hash.CRC32C(b)
}
