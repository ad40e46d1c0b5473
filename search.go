package magictable

import (
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	magicerrors "github.com/tamirms/magictable/errors"
)

// searchChunkSize is how many candidate multipliers are drawn from the
// random source per batch. Candidates are always consumed in whole chunks,
// even when a hit occurs mid-chunk, so the source position after a level is
// a function of the inputs alone. That is what keeps results identical
// across worker counts: the parallel path verifies the same chunk and picks
// the lowest-index hit.
const searchChunkSize = 512

// searcher runs the randomized (magic, shift) search for one mask.
type searcher[V comparable] struct {
	entries []entry[V]
	cfg     *buildConfig
	src     rand.Source
	workers int

	scratches  []*verifyScratch[V] // one per worker; index 0 in single-threaded mode
	candidates []uint64            // current chunk of candidate multipliers
	hits       []bool              // per-candidate verification results (parallel mode)
}

func newSearcher[V comparable](entries []entry[V], cfg *buildConfig, src rand.Source) *searcher[V] {
	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}
	s := &searcher[V]{
		entries:    entries,
		cfg:        cfg,
		src:        src,
		workers:    workers,
		scratches:  make([]*verifyScratch[V], workers),
		candidates: make([]uint64, searchChunkSize),
	}
	if workers > 1 {
		s.hits = make([]bool, searchChunkSize)
	}
	return s
}

// run executes the shift schedule: bounded random search at the current
// shift, doubling the table (shift-1) whenever the guess budget runs out,
// failing once the floor would be crossed. A success at the very first
// level triggers the shrink pass instead, walking shift upward while each
// level still verifies within budget.
func (s *searcher[V]) run() (uint64, uint8, error) {
	first := uint8(initialShift)
	if s.cfg.shiftFloor > first {
		first = s.cfg.shiftFloor
	}

	shift := first
	s.growScratches(1 << (64 - int(shift)))

	magic, ok := s.searchAtShift(shift)
	for !ok {
		if shift <= s.cfg.shiftFloor {
			return 0, 0, fmt.Errorf("%w (floor shift %d, %d entries, %d guesses per level)",
				magicerrors.ErrSearchExhausted, s.cfg.shiftFloor, len(s.entries), s.cfg.guessLimit)
		}
		shift--
		s.growScratches(1 << (64 - int(shift)))
		magic, ok = s.searchAtShift(shift)
	}

	// Shrink only when no growth was needed: a level that already had to
	// double the table has no smaller table to offer.
	if shift == first {
		for shift < 63 {
			m, ok := s.searchAtShift(shift + 1)
			if !ok {
				break
			}
			shift++
			magic = m
		}
	}

	return magic, shift, nil
}

// growScratches sizes every worker's scratch for tables of slots entries.
func (s *searcher[V]) growScratches(slots int) {
	for i := range s.scratches {
		if s.scratches[i] == nil {
			s.scratches[i] = newVerifyScratch[V](slots)
		} else {
			s.scratches[i].grow(slots)
		}
	}
}

// searchAtShift tries up to guessLimit candidates at the given shift.
// Candidates are the AND of three independent draws, biasing them toward
// few set bits; sparse multipliers empirically verify far more often for
// this kind of multiplicative hash.
func (s *searcher[V]) searchAtShift(shift uint8) (uint64, bool) {
	budget := s.cfg.guessLimit
	for budget > 0 {
		n := min(searchChunkSize, budget)
		budget -= n
		for i := range n {
			s.candidates[i] = s.src.Uint64() & s.src.Uint64() & s.src.Uint64()
		}
		if magic, ok := s.verifyChunk(n, shift); ok {
			return magic, true
		}
	}
	return 0, false
}

// verifyChunk verifies candidates[:n] and returns the lowest-index hit.
func (s *searcher[V]) verifyChunk(n int, shift uint8) (uint64, bool) {
	if s.workers <= 1 {
		scratch := s.scratches[0]
		for i := 0; i < n; i++ {
			if scratch.verify(s.entries, s.candidates[i], shift) {
				return s.candidates[i], true
			}
		}
		return 0, false
	}

	// Workers stride the chunk so every index below n is written exactly
	// once; the winner is then chosen sequentially, keeping the result
	// identical to the single-threaded path.
	var g errgroup.Group
	for w := 0; w < s.workers; w++ {
		scratch := s.scratches[w]
		g.Go(func() error {
			for i := w; i < n; i += s.workers {
				s.hits[i] = scratch.verify(s.entries, s.candidates[i], shift)
			}
			return nil
		})
	}
	_ = g.Wait() // verification workers do not fail

	for i := 0; i < n; i++ {
		if s.hits[i] {
			return s.candidates[i], true
		}
	}
	return 0, false
}
