// Bench is a benchmarking tool for measuring magictable search cost, table
// size, and lookup throughput.
//
// Usage:
//
//	go run ./cmd/bench -mode chess -workers 8
//	go run ./cmd/bench -mode random -bits 14 -density 0.1
//
// Flags:
//
//	-mode     Workload: chess (rook+bishop attack tables for all 64 squares)
//	          or random (one mask with murmur3-derived answers) (default: chess)
//	-bits     Set bits in the random-mode mask (default: 12)
//	-density  Fraction of subsets with a concrete answer in random mode (default: 1.0)
//	-guesses  Candidate multipliers per shift level (default: 1<<20)
//	-workers  Parallel workers (default: 1)
//	-seed     Global seed (default: 1)
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/bits"
	mrand "math/rand/v2"
	"os"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/magictable"
)

func main() {
	modeFlag := flag.String("mode", "chess", "workload: chess or random")
	bitsFlag := flag.Int("bits", 12, "set bits in the random-mode mask")
	densityFlag := flag.Float64("density", 1.0, "fraction of concrete answers in random mode")
	guessFlag := flag.Int("guesses", 1<<20, "candidate multipliers per shift level")
	workersFlag := flag.Int("workers", 1, "parallel workers")
	seedFlag := flag.Uint64("seed", 1, "global seed")
	flag.Parse()

	opts := []magictable.BuildOption{
		magictable.WithGuessLimit(*guessFlag),
		magictable.WithWorkers(*workersFlag),
		magictable.WithSeed(*seedFlag),
	}

	switch *modeFlag {
	case "chess":
		runChess(opts)
	case "random":
		runRandom(*bitsFlag, *densityFlag, *seedFlag, opts)
	default:
		fmt.Printf("Unknown mode: %s (use 'chess' or 'random')\n", *modeFlag)
		os.Exit(1)
	}
}

func runChess(opts []magictable.BuildOption) {
	pieces := []struct {
		name    string
		mask    func(sq int) uint64
		attacks func(sq int, occ uint64) uint64
	}{
		{"rook", rookMask, rookAttacks},
		{"bishop", bishopMask, bishopAttacks},
	}

	for _, piece := range pieces {
		masks := make([]uint64, 64)
		for sq := range masks {
			masks[sq] = piece.mask(sq)
		}

		fmt.Printf("Searching %s magics...\n", piece.name)
		start := time.Now()
		grp, err := magictable.BuildGroup(masks, func(sq int, occ uint64) (uint64, bool) {
			return piece.attacks(sq, occ), true
		}, opts...)
		if err != nil {
			fmt.Printf("%s build failed: %v\n", piece.name, err)
			os.Exit(1)
		}
		searchDuration := time.Since(start)

		maxShift, minShift := uint8(0), uint8(64)
		for sq := 0; sq < 64; sq++ {
			s := grp.Member(sq).Shift
			if s > maxShift {
				maxShift = s
			}
			if s < minShift {
				minShift = s
			}
		}

		benchNs := benchGroupLookup(grp)

		fmt.Printf("  search time    %8.2f sec\n", searchDuration.Seconds())
		fmt.Printf("  total slots    %8d (%.1f KB at 8 bytes/slot)\n", grp.Len(), float64(grp.Len())*8/1024)
		fmt.Printf("  shift range    %d..%d\n", minShift, maxShift)
		fmt.Printf("  lookup         %8.2f ns/op\n", benchNs)
	}
}

func runRandom(maskBits int, density float64, seed uint64, opts []magictable.BuildOption) {
	if maskBits < 1 || maskBits > 24 {
		fmt.Printf("-bits must be in [1, 24], got %d\n", maskBits)
		os.Exit(1)
	}

	rng := mrand.New(mrand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	var mask uint64
	for bits.OnesCount64(mask) != maskBits {
		mask = 0
		for bits.OnesCount64(mask) < maskBits {
			mask |= 1 << (rng.Uint64() % 64)
		}
	}

	// Answers derived from murmur3 of the subset: deterministic, uniform,
	// and (almost surely) distinct, so no constructive collisions help.
	fn := func(subset uint64) (uint64, bool) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], subset)
		h := murmur3.Sum64WithSeed(buf[:], uint32(seed))
		if density < 1.0 && float64(h%(1<<20))/(1<<20) >= density {
			return 0, false
		}
		return h, true
	}

	entries := 0
	if _, ok := fn(0); ok {
		entries++
	}
	for subset := range magictable.Subsets(mask) {
		if _, ok := fn(subset); ok {
			entries++
		}
	}
	fmt.Printf("mask %#016x: %d set bits, %d/%d concrete subsets\n",
		mask, maskBits, entries, 1<<maskBits)

	start := time.Now()
	tbl, err := magictable.Build(mask, fn, opts...)
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		os.Exit(1)
	}
	searchDuration := time.Since(start)

	p := tbl.Params()
	fmt.Printf("  search time    %8.2f sec\n", searchDuration.Seconds())
	fmt.Printf("  magic          %#016x\n", p.Magic)
	fmt.Printf("  shift          %8d (%d slots, %.2f slots/entry)\n",
		p.Shift, tbl.Len(), float64(tbl.Len())/float64(max(entries, 1)))
	fmt.Printf("  params digest  %#016x\n", p.Checksum())
	fmt.Printf("  lookup         %8.2f ns/op\n", benchTableLookup(tbl))
}

const benchQueries = 1_000_000

func benchTableLookup(tbl *magictable.Table[uint64]) float64 {
	rng := mrand.New(mrand.NewPCG(42, 43))
	queries := make([]uint64, 4096)
	for i := range queries {
		queries[i] = rng.Uint64()
	}
	var sink uint64
	start := time.Now()
	for i := 0; i < benchQueries; i++ {
		sink += tbl.Lookup(queries[i&4095])
	}
	_ = sink
	return float64(time.Since(start).Nanoseconds()) / benchQueries
}

func benchGroupLookup(grp *magictable.Group[uint64]) float64 {
	rng := mrand.New(mrand.NewPCG(42, 43))
	queries := make([]uint64, 4096)
	for i := range queries {
		queries[i] = rng.Uint64()
	}
	var sink uint64
	start := time.Now()
	for i := 0; i < benchQueries; i++ {
		sink += grp.Lookup(i&63, queries[i&4095])
	}
	_ = sink
	return float64(time.Since(start).Nanoseconds()) / benchQueries
}

// Board geometry and ray casting, used only to generate the workload.

func rookMask(sq int) uint64 {
	file, rank := sq%8, sq/8
	var mask uint64
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= 1 << (rank*8 + f)
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= 1 << (r*8 + file)
		}
	}
	return mask
}

func bishopMask(sq int) uint64 {
	// Relevant occupancy excludes the board edge; edge squares never change
	// a bishop's reachable set.
	const edges = 0xFF818181818181FF
	return bishopAttacks(sq, 0) &^ edges
}

func ray(sq, df, dr int, occupied uint64) uint64 {
	file, rank := sq%8, sq/8
	var attacks uint64
	for f, r := file+df, rank+dr; f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f+df, r+dr {
		bit := uint64(1) << (r*8 + f)
		attacks |= bit
		if occupied&bit != 0 {
			break
		}
	}
	return attacks
}

func rookAttacks(sq int, occupied uint64) uint64 {
	return ray(sq, 1, 0, occupied) | ray(sq, -1, 0, occupied) |
		ray(sq, 0, 1, occupied) | ray(sq, 0, -1, occupied)
}

func bishopAttacks(sq int, occupied uint64) uint64 {
	return ray(sq, 1, 1, occupied) | ray(sq, 1, -1, occupied) |
		ray(sq, -1, 1, occupied) | ray(sq, -1, -1, occupied)
}
