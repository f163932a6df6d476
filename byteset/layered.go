package byteset

import "github.com/covfeedback/core/internal/fault"

// Layered composes two Sets so that every write to the lower set also marks
// a presence bit in a proportionally smaller upper set, letting a drain
// skip whole dead regions of the lower set by first draining the (much
// smaller, much denser) upper set.
type Layered struct {
	upper Set
	lower Set
	ratio uint64
	mult  uint64
}

// NewLayered builds a Layered set from an already-constructed upper and
// lower Set. lower's size must be an exact, positive multiple of upper's
// size; that multiple becomes the ratio of lower bytes each upper byte
// represents.
func NewLayered(upper, lower Set) *Layered {
	upperSize, lowerSize := upper.SizeInBytes(), lower.SizeInBytes()
	if upperSize == 0 || lowerSize == 0 || lowerSize%upperSize != 0 {
		fault.Trap("byteset", "lower size %d is not a multiple of upper size %d", lowerSize, upperSize)
	}
	return &Layered{
		upper: upper,
		lower: lower,
		ratio: lowerSize / upperSize,
		mult:  lower.SizeMultiple() * upper.SizeMultiple(),
	}
}

// NewTwoLayer builds a Layered set with a plain ByteSet of size n below and
// a plain ByteSet of size n/64 above, the standard "upper 64x smaller"
// shape.
func NewTwoLayer(n uint64) *Layered {
	if n%(SizeMultiple*SizeMultiple) != 0 {
		fault.Trap("byteset", "two-layer size %d must be a multiple of %d", n, SizeMultiple*SizeMultiple)
	}
	return NewLayered(New(n/SizeMultiple), New(n))
}

// Set marks idx present in the upper set and stores v in the lower set.
func (l *Layered) Set(idx uint64, v byte) {
	l.upper.Set(idx/l.ratio, 1)
	l.lower.Set(idx, v)
}

// SaturatedIncrement marks idx present in the upper set and saturates its
// byte in the lower set.
func (l *Layered) SaturatedIncrement(idx uint64) {
	l.upper.Set(idx/l.ratio, 1)
	l.lower.SaturatedIncrement(idx)
}

// Clear clears both layers.
func (l *Layered) Clear() {
	l.upper.Clear()
	l.lower.Clear()
}

// ForEachNonZero drains the upper layer first, and for every upper byte
// found non-zero, drains the corresponding span of the lower layer — so a
// lower region with no activity at all costs one upper byte check instead
// of a full span scan.
func (l *Layered) ForEachNonZero(from, to uint64, visit func(idx uint64, v byte)) {
	if from%l.mult != 0 || to%l.mult != 0 || from > to || to > l.lower.SizeInBytes() {
		fault.Trap("byteset", "invalid drain range [%d,%d) for layered size %d", from, to, l.lower.SizeInBytes())
	}
	l.upper.ForEachNonZero(from/l.ratio, to/l.ratio, func(upperIdx uint64, _ byte) {
		lowerFrom := upperIdx * l.ratio
		lowerTo := lowerFrom + l.ratio
		l.lower.ForEachNonZero(lowerFrom, lowerTo, visit)
	})
}

// SizeInBytes returns the size of the lower (outward-facing) layer.
func (l *Layered) SizeInBytes() uint64 { return l.lower.SizeInBytes() }

// SizeMultiple returns the alignment constraint on drain range boundaries,
// the product of both layers' own multiples.
func (l *Layered) SizeMultiple() uint64 { return l.mult }
