// Package bits provides low-level bit manipulation primitives.
package bits

// NextSubset advances a subset-of-mask enumeration by one step.
// Given the current subset, it returns the numerically smallest subset of
// mask that is greater than cur, or 0 when cur is the full mask (the
// sequence is exhausted).
//
// The carry trick: OR-ing in the complement of the mask forces the +1 carry
// to ripple straight through every don't-care bit position, so the increment
// lands exactly on the next valid subset. Requires the wraparound semantics
// of unsigned 64-bit arithmetic; cur must be a subset of mask.
func NextSubset(cur, mask uint64) uint64 {
	return mask & ((cur | ^mask) + 1)
}

// Deposit scatters the low popcount(mask) bits of index into the set bit
// positions of mask (software PDEP). Bit i of index is placed at the i-th
// lowest set bit of mask. Bits of index beyond popcount(mask) are ignored.
func Deposit(index, mask uint64) uint64 {
	var out uint64
	for mask != 0 {
		bit := mask & -mask
		if index&1 != 0 {
			out |= bit
		}
		index >>= 1
		mask &= mask - 1
	}
	return out
}

// Extract gathers the bits of x at the set positions of mask into the low
// bits of the result (software PEXT, the inverse of Deposit over subsets
// of mask).
func Extract(x, mask uint64) uint64 {
	var out uint64
	shift := 0
	for mask != 0 {
		bit := mask & -mask
		if x&bit != 0 {
			out |= 1 << shift
		}
		shift++
		mask &= mask - 1
	}
	return out
}
