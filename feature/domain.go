// Package feature implements the fixed-size feature domain algebra: a
// 64-bit feature space partitioned into equal-sized domains, plus the
// encoders that turn runtime observations (edges, counters, compares) into
// features within those domains.
package feature

import "github.com/covfeedback/core/internal/fault"

// Feature is a single point in the 64-bit feature space. NoFeature (zero)
// is reserved and never produced by an encoder.
type Feature uint64

// DomainSize is the number of distinct values (S) available within a
// single domain.
const DomainSize = 1 << 27

// NoFeature is the reserved zero value; no encoder ever returns it.
const NoFeature Feature = 0

// Domain is one fixed-size slice of the feature space. Domain identity is
// its declaration order, not its name: renumbering domains would silently
// break every previously recorded feature.
type Domain struct{ id int }

// ID returns the domain's declaration-order index.
func (d Domain) ID() int { return d.id }

// Begin returns the first feature value belonging to d.
func (d Domain) Begin() Feature { return Feature(uint64(d.id) * DomainSize) }

// End returns one past the last feature value belonging to d.
func (d Domain) End() Feature { return d.Begin() + DomainSize }

// Contains reports whether f falls within d.
func (d Domain) Contains(f Feature) bool { return f >= d.Begin() && f < d.End() }

// ToFeature maps a domain-local number (reduced mod DomainSize) to the
// corresponding feature.
func (d Domain) ToFeature(n uint64) Feature {
	return d.Begin() + Feature(n%DomainSize)
}

// DomainOf returns the declaration-order index of the domain containing f.
func DomainOf(f Feature) int { return int(uint64(f) / DomainSize) }

// IndexInDomain returns f's offset within its containing domain.
func IndexInDomain(f Feature) uint64 { return uint64(f) % DomainSize }

// The canonical domain table, in declaration order. Order is the ABI: never
// insert a domain in the middle, only append before DomainSentinel.
var (
	DomainUnknown     = Domain{0}
	DomainPC          = Domain{1}
	DomainCounters8   = Domain{2}
	DomainDataflow    = Domain{3}
	DomainCmp         = Domain{4} // legacy; intentionally never produced, see DESIGN.md
	DomainCmpEq       = Domain{5}
	DomainCmpModDiff  = Domain{6}
	DomainCmpHamming  = Domain{7}
	DomainCmpDiffLog  = Domain{8}
	DomainCallStack   = Domain{9}
	DomainBoundedPath = Domain{10}
	DomainPCPair      = Domain{11}
)

const (
	firstUserDomain = 12
	numUserDomains  = 16
)

// UserDomains holds the 16 slots reserved for embedder-defined domains,
// gated at runtime by a UserDomainMask.
var UserDomains [numUserDomains]Domain

// DomainSentinel is one past the last valid domain; DomainOf never legally
// returns a value >= DomainSentinel.ID() for a well-formed feature.
var DomainSentinel = Domain{firstUserDomain + numUserDomains}

func init() {
	for i := range UserDomains {
		UserDomains[i] = Domain{firstUserDomain + i}
	}
}

// UserDomainMask gates which of the 16 user domains an embedder has
// enabled; bit i corresponds to UserDomains[i].
type UserDomainMask uint64

// Enabled reports whether user domain i is turned on in m.
func (m UserDomainMask) Enabled(i int) bool {
	if i < 0 || i >= numUserDomains {
		fault.Trap("feature", "user domain index %d out of range [0,%d)", i, numUserDomains)
	}
	return m&(1<<uint(i)) != 0
}
