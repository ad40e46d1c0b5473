package magictable

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	magicerrors "github.com/tamirms/magictable/errors"
)

// GroupAnswerFunc is the per-member answer function of a group build. The
// same totality contract as AnswerFunc applies, for every member's subset
// domain.
type GroupAnswerFunc[V comparable] func(member int, subset uint64) (V, bool)

// Group packs the tables of several masks into one shared backing array
// with per-member offsets, the "fancy magic" layout chess engines use for
// the 64 per-square attack tables. Like Table, a Group is immutable after
// construction and safe for unlimited concurrent readers.
type Group[V comparable] struct {
	table   []V
	members []groupMember
}

type groupMember struct {
	params Params
	offset uint64
}

// BuildGroup runs an independent magic search for every mask and packs the
// resulting dense tables into one Group. Members are searched concurrently
// when WithWorkers is set; each member draws from its own seed-derived
// random stream, so the result is identical for any worker count.
//
// WithSource is not honored here (a single source shared across concurrent
// member searches would lose reproducibility); use WithSeed instead.
func BuildGroup[V comparable](masks []uint64, fn GroupAnswerFunc[V], opts ...BuildOption) (*Group[V], error) {
	if fn == nil {
		return nil, magicerrors.ErrNilAnswerFunc
	}
	if len(masks) == 0 {
		return nil, magicerrors.ErrEmptyGroup
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}

	tables := make([]*Table[V], len(masks))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, mask := range masks {
		g.Go(func() error {
			tbl, err := Build(mask,
				func(subset uint64) (V, bool) { return fn(i, subset) },
				WithGuessLimit(cfg.guessLimit),
				WithShiftFloor(cfg.shiftFloor),
				WithSeed(memberSeed(cfg.seed, i)),
			)
			if err != nil {
				return fmt.Errorf("group member %d: %w", i, err)
			}
			tables[i] = tbl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, tbl := range tables {
		total += tbl.Len()
	}

	grp := &Group[V]{
		table:   make([]V, 0, total),
		members: make([]groupMember, len(masks)),
	}
	var offset uint64
	for i, tbl := range tables {
		grp.members[i] = groupMember{params: tbl.Params(), offset: offset}
		grp.table = append(grp.table, tbl.table...)
		offset += uint64(tbl.Len())
	}
	return grp, nil
}

// memberSeed derives an independent per-member seed so identical masks in
// one group still search distinct candidate streams.
func memberSeed(seed uint64, member int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], seed)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(member))
	return xxh3.Hash(buf[:])
}

// Lookup returns the answer for query against the given member's mask.
// Branch-free and allocation-free, like Table.Lookup plus one offset add.
func (g *Group[V]) Lookup(member int, query uint64) V {
	m := &g.members[member]
	return g.table[m.offset+((query&m.params.Mask)*m.params.Magic)>>m.params.Shift]
}

// Member returns the parameter triple of member i.
func (g *Group[V]) Member(i int) Params {
	return g.members[i].params
}

// Offset returns the slot offset of member i within the shared table.
func (g *Group[V]) Offset(i int) int {
	return int(g.members[i].offset)
}

// NumMembers returns the number of masks in the group.
func (g *Group[V]) NumMembers() int {
	return len(g.members)
}

// Len returns the total number of slots in the shared table.
func (g *Group[V]) Len() int {
	return len(g.table)
}
