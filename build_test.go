package magictable

import (
	"errors"
	"math/bits"
	"testing"

	magicerrors "github.com/tamirms/magictable/errors"
)

// testGuessLimit keeps searches short in tests; the shrink schedule burns a
// whole budget at its first failing level.
const testGuessLimit = 2048

// TestBuildScenario pins the smallest interesting case: mask 0b101 with three
// concrete answers and a don't-care empty subset.
func TestBuildScenario(t *testing.T) {
	answers := map[uint64]string{
		0b001: "A",
		0b100: "B",
		0b101: "C",
	}
	tbl, err := Build(0b101, func(subset uint64) (string, bool) {
		v, ok := answers[subset]
		return v, ok
	}, WithGuessLimit(testGuessLimit))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for subset, want := range answers {
		if got := tbl.Lookup(subset); got != want {
			t.Errorf("Lookup(%#b) = %q, want %q", subset, got, want)
		}
	}

	// The three concrete answers differ pairwise, so their indices must too.
	p := tbl.Params()
	idx := func(subset uint64) uint64 { return (subset * p.Magic) >> p.Shift }
	if idx(0b001) == idx(0b100) || idx(0b001) == idx(0b101) || idx(0b100) == idx(0b101) {
		t.Errorf("differing answers share a slot: %d %d %d", idx(0b001), idx(0b100), idx(0b101))
	}
}

// TestBuildLookupProperty builds tables over random masks and densities and
// checks every concrete subset against the oracle.
func TestBuildLookupProperty(t *testing.T) {
	rng := newTestRNG(t)
	for trial := 0; trial < 20; trial++ {
		mask := randomMask(rng, 10)
		density := 0.2 + 0.8*rng.Float64()
		oracle, fn := sparseAnswers(rng, mask, density)

		tbl, err := Build(mask, fn, WithGuessLimit(testGuessLimit))
		if err != nil {
			t.Fatalf("mask %#x density %.2f: %v", mask, density, err)
		}
		checkTable(t, tbl, oracle)
	}
}

// TestBuildMaskedQuery verifies bits outside the mask never influence a
// lookup.
func TestBuildMaskedQuery(t *testing.T) {
	rng := newTestRNG(t)
	mask := uint64(0x00F000000000000F)
	oracle, fn := sparseAnswers(rng, mask, 1.0)

	tbl, err := Build(mask, fn, WithGuessLimit(testGuessLimit))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for subset, want := range oracle {
		noise := rng.Uint64() &^ mask
		if got := tbl.Lookup(subset | noise); got != want {
			t.Fatalf("Lookup(%#x|%#x) = %d, want %d", subset, noise, got, want)
		}
	}
}

// TestBuildDeterministic pins seeded idempotence: same seed, same inputs,
// same params and table, including across worker counts.
func TestBuildDeterministic(t *testing.T) {
	rng := newTestRNG(t)
	mask := randomMask(rng, 8)
	oracle, fn := sparseAnswers(rng, mask, 0.9)

	var params []Params
	for _, workers := range []int{1, 1, 4} {
		tbl, err := Build(mask, fn,
			WithGuessLimit(testGuessLimit),
			WithSeed(0xDECAFBAD),
			WithWorkers(workers),
		)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		checkTable(t, tbl, oracle)
		params = append(params, tbl.Params())
	}

	if params[0] != params[1] {
		t.Errorf("same seed produced different params: %+v vs %+v", params[0], params[1])
	}
	if params[0] != params[2] {
		t.Errorf("worker count changed the result: %+v vs %+v", params[0], params[2])
	}
}

// TestBuildShrinks checks the shrink pass: a don't-care-rich domain must end
// with a table far below the 2^16-slot starting size, and the returned shift
// is never below the first level tried.
func TestBuildShrinks(t *testing.T) {
	rng := newTestRNG(t)
	mask := randomMask(rng, 12)
	for bits.OnesCount64(mask) < 10 {
		mask = randomMask(rng, 12)
	}
	// Only a handful of concrete answers out of the >=1024 subsets.
	oracle, fn := sparseAnswers(rng, mask, 0.005)
	for len(oracle) < 2 {
		oracle, fn = sparseAnswers(rng, mask, 0.01)
	}

	tbl, err := Build(mask, fn, WithGuessLimit(testGuessLimit))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	checkTable(t, tbl, oracle)

	if s := tbl.Params().Shift; s < initialShift {
		t.Errorf("shift %d below the initial level %d despite success there", s, initialShift)
	}
	if tbl.Len() >= 1<<16 {
		t.Errorf("table has %d slots; shrink should have reduced it below the starting 2^16", tbl.Len())
	}
}

// TestBuildZeroMask pins the degenerate case: a 1-slot table, no search, all
// queries answered from slot 0.
func TestBuildZeroMask(t *testing.T) {
	tbl, err := Build(0, func(subset uint64) (string, bool) {
		return "empty", true
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	for _, q := range []uint64{0, 1, 0xFFFFFFFFFFFFFFFF} {
		if got := tbl.Lookup(q); got != "empty" {
			t.Errorf("Lookup(%#x) = %q, want %q", q, got, "empty")
		}
	}

	// All-don't-care zero mask: defined zero-value lookups.
	tbl2, err := Build(0, func(subset uint64) (int, bool) { return 0, false })
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := tbl2.Lookup(42); got != 0 {
		t.Errorf("Lookup on all-don't-care table = %d, want 0", got)
	}
}

// TestBuildExhaustsDeterministically sets the floor so high that no
// multiplier can avoid collisions, and requires a clean failure.
func TestBuildExhaustsDeterministically(t *testing.T) {
	// 8 set bits, every subset a distinct answer: 256 entries can never fit
	// a 64-slot table.
	mask := uint64(0xFF)
	fn := func(subset uint64) (uint64, bool) { return subset + 1, true }

	_, err := Build(mask, fn,
		WithGuessLimit(256),
		WithShiftFloor(58),
	)
	if !errors.Is(err, magicerrors.ErrSearchExhausted) {
		t.Fatalf("err = %v, want ErrSearchExhausted", err)
	}
}

// TestBuildGrowthDescendsToFloor forces the schedule downward: a 17-bit
// all-distinct domain overloads the 2^16 starting table by pigeonhole, so
// every level fails and the search must walk shift 48 down to the floor and
// fail cleanly instead of looping.
func TestBuildGrowthDescendsToFloor(t *testing.T) {
	mask := uint64(0x1FFFF) // 17 bits, 2^17 distinct answers
	fn := func(subset uint64) (uint64, bool) { return subset + 1, true }

	_, err := Build(mask, fn,
		WithGuessLimit(64),
		WithShiftFloor(44),
	)
	if !errors.Is(err, magicerrors.ErrSearchExhausted) {
		t.Fatalf("err = %v, want ErrSearchExhausted after descending to the floor", err)
	}
}

// TestBuildValidation covers option and argument validation.
func TestBuildValidation(t *testing.T) {
	fn := func(subset uint64) (int, bool) { return 0, true }

	if _, err := Build[int](1, nil); !errors.Is(err, magicerrors.ErrNilAnswerFunc) {
		t.Errorf("nil fn: err = %v, want ErrNilAnswerFunc", err)
	}
	if _, err := Build(1, fn, WithGuessLimit(0)); !errors.Is(err, magicerrors.ErrInvalidGuessLimit) {
		t.Errorf("zero guess limit: err = %v, want ErrInvalidGuessLimit", err)
	}
	if _, err := Build(1, fn, WithShiftFloor(64)); !errors.Is(err, magicerrors.ErrInvalidShiftFloor) {
		t.Errorf("floor 64: err = %v, want ErrInvalidShiftFloor", err)
	}
}

// TestBuildHighFloorStart pins that a floor above the default start clamps
// the first level: the result never goes below the floor.
func TestBuildHighFloorStart(t *testing.T) {
	mask := uint64(0b1111) // 16 subsets
	fn := func(subset uint64) (uint64, bool) { return subset, true }

	tbl, err := Build(mask, fn, WithGuessLimit(testGuessLimit), WithShiftFloor(56))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s := tbl.Params().Shift; s < 56 {
		t.Errorf("shift %d below the floor 56", s)
	}
	for subset := range Subsets(mask) {
		if got := tbl.Lookup(subset); got != subset {
			t.Errorf("Lookup(%#x) = %d", subset, got)
		}
	}
}

// TestBuildDontCareCompression demonstrates the point of the relaxed
// collision rule: with few concrete answers, the table ends smaller than
// 2^popcount(mask).
func TestBuildDontCareCompression(t *testing.T) {
	mask := uint64(0x3FF) // 10 bits, 1024 subsets
	concrete := map[uint64]uint64{0x001: 1, 0x200: 2, 0x201: 3}
	fn := func(subset uint64) (uint64, bool) {
		v, ok := concrete[subset]
		return v, ok
	}

	tbl, err := Build(mask, fn, WithGuessLimit(testGuessLimit))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n := bits.OnesCount64(mask); tbl.Len() >= 1<<n {
		t.Errorf("table %d slots, want fewer than 2^%d", tbl.Len(), n)
	}
	for subset, want := range concrete {
		if got := tbl.Lookup(subset); got != want {
			t.Errorf("Lookup(%#x) = %d, want %d", subset, got, want)
		}
	}
}
