package magictable

import (
	"encoding/binary"
	"hash/fnv"
	"math/bits"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG derives a deterministic RNG from the test name so every test
// gets its own reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomMask draws a mask with at most maxBits set bits.
func randomMask(rng *rand.Rand, maxBits int) uint64 {
	for {
		mask := rng.Uint64() & rng.Uint64() & rng.Uint64()
		if n := bits.OnesCount64(mask); n > 0 && n <= maxBits {
			return mask
		}
	}
}

// sparseAnswers builds a ground-truth answer map for mask: each subset
// (including the empty one) gets a distinct uint64 answer with probability
// density, and don't-care otherwise. The returned AnswerFunc reads from the
// map; the map itself is the oracle tests compare lookups against.
func sparseAnswers(rng *rand.Rand, mask uint64, density float64) (map[uint64]uint64, AnswerFunc[uint64]) {
	oracle := make(map[uint64]uint64)
	next := uint64(1) // distinct, nonzero answers so untouched slots are distinguishable
	consider := func(subset uint64) {
		if rng.Float64() < density {
			oracle[subset] = next
			next++
		}
	}
	consider(0)
	for subset := range Subsets(mask) {
		consider(subset)
	}
	fn := func(subset uint64) (uint64, bool) {
		v, ok := oracle[subset]
		return v, ok
	}
	return oracle, fn
}

// checkTable asserts that every concrete subset in oracle looks up to its
// answer.
func checkTable(t *testing.T, tbl *Table[uint64], oracle map[uint64]uint64) {
	t.Helper()
	for subset, want := range oracle {
		if got := tbl.Lookup(subset); got != want {
			t.Fatalf("Lookup(%#x) = %d, want %d", subset, got, want)
		}
	}
}
