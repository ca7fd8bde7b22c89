// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers for FFT and buffer sizing.

All operations are O(1), allocation free and safe to call from the
real-time path.
*/
package bitint

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of 2.
// The expression (n & (n-1)) == 0 holds only when a single bit is set:
// subtracting 1 from a power of 2 flips every lower bit, so the AND
// clears to zero exactly in that case.
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the smallest power of 2 >= size.
// The size-1 subtraction keeps exact powers of 2 unchanged: for 8,
// bits.Len64(7) is 3 and 1<<3 is 8 again, while without it bits.Len64(8)
// would be 4 and the result would incorrectly double to 16.
//
// Examples:
//
//	Input  Output
//	4      4       Already a power of 2 (preserved)
//	5      8       Next power after 5
//	0      1       Zero and negatives clamp to 1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return int(1 << bits.Len64(uint64(size-1)))
}

// Log2 returns floor(log2(n)) for n > 0, which for power-of-two sizes is
// the exact recursion depth of a radix-2 transform. Returns 0 for n <= 0.
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len64(uint64(n)) - 1
}
