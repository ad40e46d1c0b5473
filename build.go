package magictable

import (
	"fmt"

	magicerrors "github.com/tamirms/magictable/errors"
)

// AnswerFunc maps a subset of the mask's set bits to its answer. The second
// return value distinguishes concrete answers from don't-care: ok == false
// means any table slot content is acceptable for this subset. Don't-care is
// tagged by the return value, never by a reserved value of V, so the full
// value space of V remains usable as answers.
//
// The function must be total over the subset domain: it is invoked for every
// subset of the mask (including the empty subset) during construction, and
// must return rather than panic for all of them. A panicking answer function
// is a caller bug, not a don't-care.
type AnswerFunc[V comparable] func(subset uint64) (V, bool)

// entry is one row of the transient sparse answer table: a subset the
// answer function gave a concrete answer for.
type entry[V comparable] struct {
	subset uint64
	answer V
}

// Build constructs a Table for the given mask and answer function.
//
// It enumerates every subset of mask, collects the concrete answers, then
// runs a randomized search for a (magic, shift) pair under which no two
// subsets with differing answers share a table slot. Two subsets with equal
// answers may share a slot; that relaxation is what makes don't-care-rich
// domains hash into small tables.
//
// The search starts at a 2^16-slot table and doubles the table (shift-1)
// each time a guess budget is exhausted, failing with
// errors.ErrSearchExhausted once the configured shift floor would be
// crossed. If the very first shift level succeeds, the table is shrunk
// instead: the search walks shift upward, keeping the smallest table that
// still verifies. See the With* options for the knobs.
//
// Construction is CPU-bound and can be long-running for dense masks; it has
// no cancellation points. A caller wanting a responsive cancel should run
// Build on a dedicated goroutine and discard the result.
func Build[V comparable](mask uint64, fn AnswerFunc[V], opts ...BuildOption) (*Table[V], error) {
	if fn == nil {
		return nil, magicerrors.ErrNilAnswerFunc
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Degenerate mask: the only subset is the empty one, so every query maps
	// to a single slot. No multiplier can matter and the search is skipped.
	// Shift 64 is defined in Go (x >> 64 == 0 for uint64).
	if mask == 0 {
		table := make([]V, 1)
		if v, ok := fn(0); ok {
			table[0] = v
		}
		return &Table[V]{table: table, mask: 0, magic: 0, shift: 64}, nil
	}

	entries := collectEntries(mask, fn)

	s := newSearcher(entries, cfg, cfg.source(mask))
	magic, shift, err := s.run()
	if err != nil {
		return nil, fmt.Errorf("mask %#016x: %w", mask, err)
	}

	return denseFromEntries(Params{Mask: mask, Magic: magic, Shift: shift}, entries), nil
}

// collectEntries builds the transient sparse answer table: every subset of
// mask (the empty subset first, then the carry-trick enumeration) whose
// answer is concrete. The slice is discarded once the dense table is built.
func collectEntries[V comparable](mask uint64, fn AnswerFunc[V]) []entry[V] {
	var entries []entry[V]
	if v, ok := fn(0); ok {
		entries = append(entries, entry[V]{subset: 0, answer: v})
	}
	for subset := range Subsets(mask) {
		if v, ok := fn(subset); ok {
			entries = append(entries, entry[V]{subset: subset, answer: v})
		}
	}
	return entries
}
