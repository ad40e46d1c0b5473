// Package magictable implements magic-bitboard style perfect-hash tables:
// collision-free, constant-time lookup structures over subsets of a 64-bit
// bitmask.
//
// Given a mask of relevant bit positions and a total answer function over the
// subsets of that mask, Build searches for a multiplicative hash (a 64-bit
// magic multiplier plus a right shift) that maps every subset with a defined
// answer to a distinct slot of a dense table. Subsets the answer function
// marks as don't-care may share slots freely, which is what lets sparse
// domains hash into tables far smaller than 2^popcount(mask).
//
// # Basic Usage
//
// Building a table:
//
//	tbl, err := magictable.Build(mask, func(subset uint64) (Attack, bool) {
//	    return attacksFor(subset), true
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Querying:
//
//	a := tbl.Lookup(occupied) // branch-free, allocation-free
//
// Reconstructing from persisted parameters without re-searching:
//
//	tbl, err := magictable.New(params, answerFn)
//
// The search is randomized but deterministic for a fixed seed: the same seed,
// mask, and answer function always produce the same (magic, shift) pair and
// the same table, for any worker count.
//
// # Package Structure
//
//   - Public API: build.go (Build), table.go (Table, Params, New), group.go
//     (BuildGroup, Group), subset.go (Subsets)
//   - Configuration: build_options.go (BuildOption, With* functions)
//   - Search internals: search.go (shift schedule, candidate loop), verify.go
//     (collision check scratch)
//   - Bit primitives: internal/bits (carry-trick subset stepping, software PDEP)
//   - Error sentinels: errors/
package magictable
