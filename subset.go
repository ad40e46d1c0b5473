package magictable

import (
	"iter"

	intbits "github.com/tamirms/magictable/internal/bits"
)

// Subsets returns a lazy, restartable sequence of every nonempty subset of
// the set bits of mask, in strictly increasing numeric order, ending with
// mask itself. Each subset is visited exactly once and no value outside the
// mask is ever produced.
//
// The empty subset is not part of the sequence; callers that need it (the
// sparse and dense table builders do) handle subset 0 explicitly before
// ranging. A zero mask yields an empty sequence.
//
// The sequence is produced by carry-trick arithmetic (see bits.NextSubset)
// and allocates nothing.
func Subsets(mask uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for cur := intbits.NextSubset(0, mask); cur != 0; cur = intbits.NextSubset(cur, mask) {
			if !yield(cur) {
				return
			}
		}
	}
}
