package feature

import (
	"math/bits"

	"github.com/covfeedback/core/internal/fault"
)

// ConvertPCFeatureToPCIndex recovers the PC index encoded in a DomainPC
// feature. f must belong to DomainPC.
func ConvertPCFeatureToPCIndex(f Feature) uint64 {
	if !DomainPC.Contains(f) {
		fault.Trap("feature", "feature %d is not in the PC domain", f)
	}
	return uint64(f - DomainPC.Begin())
}

// Convert8BitCounterToNumber maps a per-PC hit counter to a domain-local
// number by log2-bucketing the counter value: counterValue must be
// non-zero (a zero counter means "never hit", which never becomes a
// feature). Eight buckets per PC index, one for each possible high bit of
// an 8-bit counter.
func Convert8BitCounterToNumber(pcIndex uint64, counterValue uint8) uint64 {
	if counterValue == 0 {
		fault.Trap("feature", "counter value is zero for pcIndex %d", pcIndex)
	}
	log2 := uint64(bits.Len8(counterValue) - 1)
	return pcIndex*8 + log2
}

// ConvertPCPairToNumber maps a pair of PC indices to a single domain-local
// number, given the maximum PC index in play.
func ConvertPCPairToNumber(pc1, pc2, maxPC uint64) uint64 {
	return pc1*maxPC + pc2
}

// ABToCmpModDiff computes the bounded circular distance between a and b,
// folding "b is slightly ahead of a" and "a is slightly ahead of b" into
// disjoint halves of a [0, 64) range, and collapsing anything further
// apart than that to 0.
func ABToCmpModDiff(a, b uint64) uint64 {
	diff := a - b
	if diff <= 32 {
		return diff
	}
	neg := -diff
	if neg < 32 {
		return 32 + neg
	}
	return 0
}

// ABToCmpHamming returns the Hamming distance between a and b, minus one.
// a and b must differ.
func ABToCmpHamming(a, b uint64) uint64 {
	if a == b {
		fault.Trap("feature", "ABToCmpHamming called with equal operands")
	}
	return uint64(bits.OnesCount64(a^b)) - 1
}

// ABToCmpDiffLog returns the number of leading zero bits in |a-b|. a and b
// must differ.
func ABToCmpDiffLog(a, b uint64) uint64 {
	if a == b {
		fault.Trap("feature", "ABToCmpDiffLog called with equal operands")
	}
	var d uint64
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	return uint64(bits.LeadingZeros64(d))
}

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// hashContext folds an 8-byte value (typically a caller PC) into a 64-bit
// hash using an inline FNV-1a, the same shape used across the retrieved
// pack for cheap context hashing.
func hashContext(x uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= (x >> (8 * uint(i))) & 0xFF
		h *= fnvPrime64
	}
	return h
}

// contextualize combines a hashed calling context with low bits carrying
// the actual observation, matching the "context in the high bits, relation
// in the low bits" shape used by the cmp_* domains.
func contextualize(callerPC uintptr, low uint64, lowBits uint) uint64 {
	h := hashContext(uint64(callerPC))
	mask := uint64(1)<<lowBits - 1
	return (h << lowBits) | (low & mask)
}

// PCFeature builds the DomainPC feature for a control-flow edge.
func PCFeature(pcIndex uint64) Feature { return DomainPC.ToFeature(pcIndex) }

// CounterFeature builds the DomainCounters8 feature for a per-PC hit
// counter.
func CounterFeature(pcIndex uint64, counterValue uint8) Feature {
	return DomainCounters8.ToFeature(Convert8BitCounterToNumber(pcIndex, counterValue))
}

// PCPairFeature builds the DomainPCPair feature for a pair of successive
// control-flow edges.
func PCPairFeature(pc1, pc2, maxPC uint64) Feature {
	return DomainPCPair.ToFeature(ConvertPCPairToNumber(pc1, pc2, maxPC))
}

// cmpLowBits is wide enough to hold every ABToCmp* result: ModDiff produces
// [0,64), Hamming and DiffLog produce [0,63].
const cmpLowBits = 6

// CmpEqFeature builds the DomainCmpEq feature for a comparison whose
// operands were equal; there is no relation to encode beyond "it happened
// here", so only the hashed calling context contributes.
func CmpEqFeature(callerPC uintptr) Feature {
	return DomainCmpEq.ToFeature(hashContext(uint64(callerPC)))
}

// CmpModDiffFeature builds the DomainCmpModDiff feature for a pair of
// unequal comparison operands.
func CmpModDiffFeature(callerPC uintptr, a, b uint64) Feature {
	return DomainCmpModDiff.ToFeature(contextualize(callerPC, ABToCmpModDiff(a, b), cmpLowBits))
}

// CmpHammingFeature builds the DomainCmpHamming feature for a pair of
// unequal comparison operands.
func CmpHammingFeature(callerPC uintptr, a, b uint64) Feature {
	return DomainCmpHamming.ToFeature(contextualize(callerPC, ABToCmpHamming(a, b), cmpLowBits))
}

// CmpDiffLogFeature builds the DomainCmpDiffLog feature for a pair of
// unequal comparison operands.
func CmpDiffLogFeature(callerPC uintptr, a, b uint64) Feature {
	return DomainCmpDiffLog.ToFeature(contextualize(callerPC, ABToCmpDiffLog(a, b), cmpLowBits))
}
