// Package runtime owns the process-lifetime coverage state that
// instrumented code writes into and that a collector drains between
// fuzzing iterations. It is the only package in this repository with
// mutable package-level state; every other package is allocated by its
// caller.
package runtime

import (
	"github.com/covfeedback/core/byteset"
	"github.com/covfeedback/core/feature"
	"github.com/covfeedback/core/internal/fault"
	"github.com/covfeedback/core/torc"
)

// maxPCs bounds the number of distinct control-flow edges this build can
// track. It's a fixed size, not a growable one, because the byte-sets it
// backs are zero-initialized static storage: they must be usable before
// any init() runs, including init()s in instrumented target packages that
// record coverage as a side effect of package-level initialization.
const maxPCs = 1 << 20

var (
	edgeCoverage = byteset.NewTwoLayer(maxPCs)
	counters8    = byteset.New(maxPCs)

	integerTORC1 = torc.NewInteger(1)
	integerTORC2 = torc.NewInteger(2)
	integerTORC4 = torc.NewInteger(4)
	integerTORC8 = torc.NewInteger(8)
	bufferTORC   = torc.NewBuffer()

	// userDomainMask gates RecordUserFeature per §6's "16 user-domain
	// slots gated by a 64-bit mask" contract. Zero-valued (everything
	// disabled) until the embedding program calls SetUserDomainMask,
	// same as every other piece of static storage this package owns.
	userDomainMask feature.UserDomainMask
)

// SetUserDomainMask installs the embedder's choice of which of the 16 user
// domains are enabled. This is the one knob SPEC_FULL §7 describes as a
// plain Go value the embedding program sets, not a flag or an env var.
func SetUserDomainMask(m feature.UserDomainMask) {
	userDomainMask = m
}

// IntegerTORC returns the process-wide recent-compares table for the given
// operand width (1, 2, 4, or 8 bytes), for callers building a dictionary
// from it directly instead of going through RecordCompare/Drain.
func IntegerTORC(width int) *torc.Integer {
	switch width {
	case 1:
		return integerTORC1
	case 2:
		return integerTORC2
	case 4:
		return integerTORC4
	case 8:
		return integerTORC8
	default:
		panic(fault.Violation{Component: "runtime", Message: "unsupported integer width"})
	}
}

// BufferTORC returns the process-wide recent-compares table for buffer
// (memcmp-style) comparisons.
func BufferTORC() *torc.Buffer { return bufferTORC }
