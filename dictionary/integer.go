package dictionary

import (
	"math/rand"

	"github.com/covfeedback/core/torc"
)

// Integer mines an Integer TORC for values worth trying against a given
// operand, and remembers the matches from the most recent Match call.
type Integer struct {
	width   int
	matched []uint64
}

// NewInteger builds an empty Integer dictionary for the given operand
// width.
func NewInteger(width int) *Integer {
	return &Integer{width: width}
}

// Match replaces the dictionary's saved matches with every value t has
// recorded on the opposite side of val, within [minV, maxV].
func (d *Integer) Match(val uint64, t *torc.Integer, minV, maxV uint64) {
	d.matched = t.Match(val, minV, maxV)
}

// IsEmpty reports whether the most recent Match found nothing.
func (d *Integer) IsEmpty() bool { return len(d.matched) == 0 }

// Size returns the number of values the most recent Match found.
func (d *Integer) Size() int { return len(d.matched) }

// RandomSaved returns a uniformly random value from the most recent
// Match's results.
func (d *Integer) RandomSaved(rnd *rand.Rand) (uint64, bool) {
	if len(d.matched) == 0 {
		return 0, false
	}
	return d.matched[rnd.Intn(len(d.matched))], true
}

// RandomTORC picks a uniformly random slot of t and returns a matching
// value if that slot happens to contain val on one side, falling back to a
// coin-flipped side of that same slot otherwise. minV and maxV bound every
// value this can return, same as IntegerDictionary::GetRandomTORCEntry's
// caller-supplied range.
func (d *Integer) RandomTORC(val uint64, rnd *rand.Rand, t *torc.Integer, minV, maxV uint64) (uint64, bool) {
	idx := rnd.Intn(t.TableSize())
	if v, ok := t.GetMatching(idx, val, minV, maxV); ok {
		return v, true
	}
	return t.RandomSide(rnd, idx, minV, maxV)
}
