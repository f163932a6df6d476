package torc

import (
	"math/rand"
	"sync/atomic"

	"github.com/covfeedback/core/internal/fault"
)

// integerTableBytes is the fixed byte budget every width's table shares;
// narrower operands get proportionally more slots.
const integerTableBytes = 4096

// pairSlot holds one recorded (lhs, rhs) compare. The two halves are
// updated independently and without ordering between them, so a reader can
// observe a torn pair: a fresh lhs next to a stale rhs, or vice versa. That
// tearing is the table's accepted cost of being lock-free; see DESIGN.md.
type pairSlot struct {
	lhs atomic.Uint64
	rhs atomic.Uint64
}

// Integer is a recent-compares table for one fixed operand width.
type Integer struct {
	width  int
	table  []pairSlot
	cursor atomic.Uint64
}

// NewInteger allocates an Integer TORC for the given operand width in
// bytes (1, 2, 4, or 8).
func NewInteger(width int) *Integer {
	switch width {
	case 1, 2, 4, 8:
	default:
		fault.Trap("torc", "unsupported integer width %d", width)
	}
	size := integerTableBytes / width
	return &Integer{width: width, table: make([]pairSlot, size)}
}

// Width returns the operand width this table was built for.
func (t *Integer) Width() int { return t.width }

// TableSize returns the number of slots in the table.
func (t *Integer) TableSize() int { return len(t.table) }

func (t *Integer) mask(v uint64) uint64 {
	if t.width == 8 {
		return v
	}
	return v & (uint64(1)<<(8*uint(t.width)) - 1)
}

// nextCursor advances the table's rotating insert cursor using the
// recurrence k <- (37k + 89) mod T, and returns the new slot index.
func (t *Integer) nextCursor() uint64 {
	n := uint64(len(t.table))
	for {
		old := t.cursor.Load()
		next := (37*old + 89) % n
		if t.cursor.CompareAndSwap(old, next) {
			return next
		}
	}
}

// Insert records a compare's two operands into the next rotating slot.
func (t *Integer) Insert(lhs, rhs uint64) {
	k := t.nextCursor()
	slot := &t.table[k]
	slot.lhs.Store(t.mask(lhs))
	slot.rhs.Store(t.mask(rhs))
}

// EntryAt returns the raw (lhs, rhs) pair stored at slot idx, which may be
// torn relative to each other (see pairSlot).
func (t *Integer) EntryAt(idx int) (lhs, rhs uint64) {
	slot := &t.table[idx]
	return slot.lhs.Load(), slot.rhs.Load()
}

// Match returns every value seen on the opposite side of val across the
// whole table, restricted to [minV, maxV], deduplicated.
func (t *Integer) Match(val, minV, maxV uint64) []uint64 {
	seen := map[uint64]bool{}
	var out []uint64
	add := func(v uint64) {
		if v < minV || v > maxV || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for i := range t.table {
		lhs, rhs := t.EntryAt(i)
		if lhs == val {
			add(rhs)
		}
		if rhs == val {
			add(lhs)
		}
	}
	return out
}

// GetMatching checks a single slot for a side equal to val, returning the
// opposite side if it falls within [minV, maxV].
func (t *Integer) GetMatching(idx int, val, minV, maxV uint64) (uint64, bool) {
	lhs, rhs := t.EntryAt(idx)
	if lhs == val && rhs >= minV && rhs <= maxV {
		return rhs, true
	}
	if rhs == val && lhs >= minV && lhs <= maxV {
		return lhs, true
	}
	return 0, false
}

// RandomEntry returns the (lhs, rhs) pair at a uniformly random slot.
func (t *Integer) RandomEntry(rnd *rand.Rand) (lhs, rhs uint64) {
	return t.EntryAt(rnd.Intn(len(t.table)))
}

// RandomSide picks one side of the slot at idx by a fair coin and reports
// whether it falls within [minV, maxV]. Heads returns lhs, tails returns
// rhs — the original implementation always returned lhs regardless of the
// coin; this is the corrected version.
func (t *Integer) RandomSide(rnd *rand.Rand, idx int, minV, maxV uint64) (uint64, bool) {
	lhs, rhs := t.EntryAt(idx)
	var v uint64
	if rnd.Intn(2) == 0 {
		v = lhs
	} else {
		v = rhs
	}
	if v < minV || v > maxV {
		return 0, false
	}
	return v, true
}
