package magictable

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/zeebo/xxh3"

	magicerrors "github.com/tamirms/magictable/errors"
)

const (
	// initialShift is the fixed starting point of the search schedule:
	// a 2^16-slot table. Sparse domains shrink from here, dense ones grow.
	initialShift = 48

	// defaultGuessLimit is the number of candidate multipliers tried per
	// shift level before the table is doubled (or the shrink stops).
	defaultGuessLimit = 1 << 20

	// defaultShiftFloor caps the table at 2^24 slots. Crossing the floor
	// fails the search rather than allocating without bound.
	defaultShiftFloor = 40

	// defaultSeed is an arbitrary default; override with WithSeed for
	// independent runs.
	defaultSeed = 0x1234567890abcdef
)

// BuildOption is a functional option for configuring Build and BuildGroup.
type BuildOption func(*buildConfig)

type buildConfig struct {
	guessLimit int
	shiftFloor uint8
	seed       uint64
	src        rand.Source // nil means derive a PCG from seed+mask
	workers    int
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		guessLimit: defaultGuessLimit,
		shiftFloor: defaultShiftFloor,
		seed:       defaultSeed,
		workers:    0, // Default to single-threaded; use WithWorkers(n) to parallelize
	}
}

func (c *buildConfig) validate() error {
	if c.guessLimit <= 0 {
		return magicerrors.ErrInvalidGuessLimit
	}
	if c.shiftFloor >= 64 {
		return magicerrors.ErrInvalidShiftFloor
	}
	return nil
}

// source returns the random source for a search over mask. An explicitly
// injected source wins; otherwise a PCG is seeded from (seed, mask) via
// xxh3 so distinct masks draw from independent streams even under the
// same global seed.
func (c *buildConfig) source(mask uint64) rand.Source {
	if c.src != nil {
		return c.src
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], c.seed)
	binary.LittleEndian.PutUint64(buf[8:16], mask)
	h := xxh3.Hash128(buf[:])
	return rand.NewPCG(h.Lo, h.Hi)
}

// WithGuessLimit sets the number of candidate multipliers tried per shift
// level before the schedule moves on.
func WithGuessLimit(n int) BuildOption {
	return func(c *buildConfig) {
		c.guessLimit = n
	}
}

// WithShiftFloor sets the minimum shift the search may descend to. The
// floor bounds the largest table the search will attempt: 2^(64-floor)
// slots. Descending past the floor fails the whole construction with
// errors.ErrSearchExhausted.
func WithShiftFloor(shift uint8) BuildOption {
	return func(c *buildConfig) {
		c.shiftFloor = shift
	}
}

// WithSeed sets the global seed for the default random source. Searches are
// fully deterministic for a fixed seed, mask, and answer function,
// regardless of worker count.
func WithSeed(seed uint64) BuildOption {
	return func(c *buildConfig) {
		c.seed = seed
	}
}

// WithSource injects the random source candidate multipliers are drawn
// from, overriding the seed-derived default. The source is consumed
// sequentially even in parallel mode, so reproducibility is preserved.
// In BuildGroup a shared source would be raced over; use WithSeed there
// instead.
func WithSource(src rand.Source) BuildOption {
	return func(c *buildConfig) {
		c.src = src
	}
}

// WithWorkers sets the number of parallel verification workers. In Build,
// candidates are verified in chunks fanned out across the workers; in
// BuildGroup, whole members are searched in parallel. Zero or one means
// single-threaded.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}
