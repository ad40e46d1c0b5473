package magictable

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	magicerrors "github.com/tamirms/magictable/errors"
)

// Table is the published lookup artifact: a dense answer table plus the
// (mask, magic, shift) triple that indexes it. It is immutable after
// construction and safe for any number of concurrent readers without
// locking.
//
// Slots that no concrete answer maps to hold the zero value of V. Looking up
// a query whose masked subset was marked don't-care returns that zero value;
// it is defined behavior, just not meaningful.
type Table[V comparable] struct {
	table []V
	mask  uint64
	magic uint64
	shift uint8
}

// Lookup returns the answer for query. Only the bits of query that are set
// in the table's mask influence the result. The lookup path is branch-free
// and allocation-free.
func (t *Table[V]) Lookup(query uint64) V {
	return t.table[((query&t.mask)*t.magic)>>t.shift]
}

// Params returns the serializable parameter triple for this table. A caller
// that persists it can later reconstruct the table with New, skipping the
// magic search entirely.
func (t *Table[V]) Params() Params {
	return Params{Mask: t.mask, Magic: t.magic, Shift: t.shift}
}

// Len returns the number of slots in the dense table, 2^(64-shift).
func (t *Table[V]) Len() int {
	return len(t.table)
}

// Params is the (mask, magic, shift) triple that, together with the answer
// function, fully determines a Table. It is the unit callers persist;
// magictable itself never touches disk.
//
// Shift 64 is the degenerate encoding for a zero mask: every query maps to
// the single slot of a one-entry table.
type Params struct {
	Mask  uint64
	Magic uint64
	Shift uint8
}

// encodedParamsLen is the fixed size of the checksum encoding:
// mask + magic + shift.
const encodedParamsLen = 8 + 8 + 1

// TableLen returns the dense table size these params imply, 2^(64-Shift).
func (p Params) TableLen() int {
	return 1 << (64 - int(p.Shift))
}

// Checksum returns an xxHash64 digest of the fixed-width encoding of p.
// Callers that persist params externally can store the checksum alongside
// and detect corrupt or mixed-up values before rebuilding.
func (p Params) Checksum() uint64 {
	var buf [encodedParamsLen]byte
	binary.LittleEndian.PutUint64(buf[0:8], p.Mask)
	binary.LittleEndian.PutUint64(buf[8:16], p.Magic)
	buf[16] = p.Shift
	return xxhash.Sum64(buf[:])
}

// validate checks the structural invariants of p. Shift 0 is rejected
// because it would imply a 2^64-slot table, which cannot be allocated.
func (p Params) validate() error {
	if p.Shift == 0 || p.Shift > 64 || (p.Shift == 64 && p.Mask != 0) {
		return magicerrors.ErrShiftOutOfRange
	}
	return nil
}

// New reconstructs a table from previously discovered params without
// re-running the magic search. The answer function must be the same one the
// params were found for (or at least induce no new collisions): the mapping
// is re-verified during the rebuild, and params that place two differing
// answers in the same slot are rejected with errors.ErrParamsInvalid.
func New[V comparable](p Params, fn AnswerFunc[V]) (*Table[V], error) {
	if fn == nil {
		return nil, magicerrors.ErrNilAnswerFunc
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	if p.Mask == 0 {
		table := make([]V, 1)
		if v, ok := fn(0); ok {
			table[0] = v
		}
		return &Table[V]{table: table, mask: 0, magic: p.Magic, shift: 64}, nil
	}

	entries := collectEntries(p.Mask, fn)

	scratch := newVerifyScratch[V](p.TableLen())
	if !scratch.verify(entries, p.Magic, p.Shift) {
		return nil, magicerrors.ErrParamsInvalid
	}

	return denseFromEntries(p, entries), nil
}

// denseFromEntries writes the verified sparse entries into a fresh dense
// table. Slots no entry maps to keep the zero value of V.
func denseFromEntries[V comparable](p Params, entries []entry[V]) *Table[V] {
	table := make([]V, p.TableLen())
	for _, e := range entries {
		table[(e.subset*p.Magic)>>p.Shift] = e.answer
	}
	return &Table[V]{table: table, mask: p.Mask, magic: p.Magic, shift: p.Shift}
}
