// Package hash provides the 32-bit hash functions used to place slot table
// records into buckets.
//
// # String keys
//
// String computes the multiplicative h*31+c hash. It is cheap, has no
// setup cost, and spreads short identifiers well enough for chaining.
//
// # Byte keys
//
// CRC32C uses the hardware-accelerated CRC32-Castagnoli polynomial
// (SSE4.2 on x86, CRC extension on ARM):
//
//	h := hash.CRC32C(key)
//
// Neither function is cryptographic; hostile keys can force collisions and
// degrade a bucket chain to a linear scan.
package hash
