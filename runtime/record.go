package runtime

import "github.com/covfeedback/core/feature"

// RecordEdge is called by instrumented code at each control-flow edge. It
// marks the edge present and bumps its saturating 8-bit hit counter.
func RecordEdge(pcIndex uint32) {
	idx := uint64(pcIndex) % maxPCs
	edgeCoverage.Set(idx, 1)
	counters8.SaturatedIncrement(idx)
}

// RecordCompare is called by instrumented code at a scalar comparison
// site. It inserts the operands into the width's integer TORC and pushes
// the resulting cmp_* feature(s) into arr.
//
// width must be 1, 2, 4, or 8 bytes.
func RecordCompare(callerPC uintptr, a, b uint64, width int, arr *feature.Array) {
	IntegerTORC(width).Insert(a, b)
	if a == b {
		arr.Push(feature.CmpEqFeature(callerPC))
		return
	}
	arr.Push(feature.CmpModDiffFeature(callerPC, a, b))
	arr.Push(feature.CmpHammingFeature(callerPC, a, b))
	arr.Push(feature.CmpDiffLogFeature(callerPC, a, b))
}

// Current is the feature array instrumented comparison sites push into for
// whichever execution is currently in flight. The driver sets it once
// before invoking the target and clears it after draining: a single
// shared slot touched by exactly one execution at a time.
var Current *feature.Array

// RecordCompareCurrent is the zero-array convenience instrumented code
// actually calls at a comparison site; it's intentionally not safe across
// overlapping executions, matching the single-execution-at-a-time model
// the rest of the instrumented call sites run under.
func RecordCompareCurrent(callerPC uintptr, a, b uint64, width int) {
	if Current == nil {
		return
	}
	RecordCompare(callerPC, a, b, width, Current)
}

// RecordUserFeature is called by instrumented or embedder code to push a
// feature into one of the 16 user-reserved domains. Per §6's mask contract,
// a feature bound for a domain the embedder hasn't enabled (see
// SetUserDomainMask) is discarded here rather than pushed into arr.
func RecordUserFeature(domainIndex int, n uint64, arr *feature.Array) {
	if !userDomainMask.Enabled(domainIndex) {
		return
	}
	arr.Push(feature.UserDomains[domainIndex].ToFeature(n))
}

// RecordBufferCompare is called by instrumented code at a buffer
// (memcmp-style) comparison site.
func RecordBufferCompare(callerPC uintptr, p1, p2 []byte) {
	bufferTORC.Insert(p1, p2)
}

// Drain sweeps every owned byte-set into arr, through the feature
// encoders, and clears what it visits. Not safe to call concurrently with
// RecordEdge or RecordCompare: the caller must quiesce instrumented code
// first.
func Drain(arr *feature.Array) {
	edgeCoverage.ForEachNonZero(0, maxPCs, func(idx uint64, _ byte) {
		arr.Push(feature.PCFeature(idx))
	})
	counters8.ForEachNonZero(0, maxPCs, func(idx uint64, v byte) {
		arr.Push(feature.CounterFeature(idx, v))
	})
}

// Reset clears the owned byte-sets, ready for the next fuzzing iteration.
// It does not clear the recent-compares tables: their contents carry over
// into the next iteration.
func Reset() {
	edgeCoverage.Clear()
	counters8.Clear()
}
