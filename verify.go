package magictable

// verifyScratch is the working state for candidate verification. It is
// reused across candidates: instead of zeroing the O(2^(64-shift)) slot
// array before every candidate, each slot records the generation it was last
// claimed in, and a slot is free whenever its generation differs from the
// current one. Bumping the counter clears the whole array in O(1); a full
// clear happens only on the rare uint32 wraparound, where stale generations
// could otherwise collide with the fresh counter.
type verifyScratch[V comparable] struct {
	slotGen []uint32
	slotVal []V // valid only where slotGen matches the current generation
	gen     uint32
}

// newVerifyScratch allocates scratch for tables of up to slots entries.
func newVerifyScratch[V comparable](slots int) *verifyScratch[V] {
	return &verifyScratch[V]{
		slotGen: make([]uint32, slots),
		slotVal: make([]V, slots),
	}
}

// grow reallocates the scratch if slots exceeds its current capacity.
// Called when the search schedule doubles the table.
func (s *verifyScratch[V]) grow(slots int) {
	if slots <= len(s.slotGen) {
		return
	}
	s.slotGen = make([]uint32, slots)
	s.slotVal = make([]V, slots)
	s.gen = 0
}

// verify reports whether the candidate (magic, shift) maps the sparse
// answer table collision-free: no two entries with differing answers may
// land in the same slot. Entries with identical answers sharing a slot are
// fine (the indexing only has to be injective modulo equal answers), which
// is what lets don't-care-rich domains verify at shifts far above
// 64-popcount(mask).
//
// The result is independent of entry order. Scratch must have been sized
// for at least 2^(64-shift) slots.
func (s *verifyScratch[V]) verify(entries []entry[V], magic uint64, shift uint8) bool {
	s.gen++
	if s.gen == 0 {
		clear(s.slotGen)
		s.gen = 1
	}
	gen := s.gen
	slotGen := s.slotGen
	slotVal := s.slotVal

	for _, e := range entries {
		idx := (e.subset * magic) >> shift
		if slotGen[idx] != gen {
			slotGen[idx] = gen
			slotVal[idx] = e.answer
		} else if slotVal[idx] != e.answer {
			return false
		}
	}
	return true
}
