// Package byteset implements the lock-free concurrent byte-set that
// instrumented code writes into and a collector drains: a fixed-size array
// of bytes that writers update (plain set or saturating increment) and a
// quiesced drain sweeps word-at-a-time.
package byteset

import (
	"sync/atomic"

	"github.com/covfeedback/core/internal/fault"
)

// SizeMultiple is the alignment every ByteSet's size, and every
// ForEachNonZero range boundary, must be a multiple of. It's a multiple of
// the number of bytes packed into one atomic word (8); a plain ByteSet only
// actually needs a multiple of 8,
// but 64 matches the original's word-sized reasoning and keeps every layer
// in a Layered composition aligned to the same boundary.
const SizeMultiple = 64

const bytesPerWord = 8

// Set is the capability every byte-set-shaped type in this package
// implements, so Layered can compose a ByteSet or another Layered
// underneath it without caring which.
type Set interface {
	Set(idx uint64, v byte)
	SaturatedIncrement(idx uint64)
	Clear()
	ForEachNonZero(from, to uint64, visit func(idx uint64, v byte))
	SizeInBytes() uint64
	SizeMultiple() uint64
}

// ByteSet is a flat, runtime-sized concurrent byte set. Every index is
// independent: concurrent writers to different indices never need to
// coordinate, and never observe each other's writes reordered relative to
// their own.
type ByteSet struct {
	words []atomic.Uint64
	size  uint64
}

// New allocates a ByteSet holding size bytes, all initially zero. size must
// be a positive multiple of SizeMultiple.
func New(size uint64) *ByteSet {
	if size == 0 || size%SizeMultiple != 0 {
		fault.Trap("byteset", "size %d is not a positive multiple of %d", size, SizeMultiple)
	}
	return &ByteSet{words: make([]atomic.Uint64, size/bytesPerWord), size: size}
}

func (b *ByteSet) wordAndShift(idx uint64) (int, uint) {
	if idx >= b.size {
		fault.Trap("byteset", "index %d out of range [0,%d)", idx, b.size)
	}
	return int(idx / bytesPerWord), uint(idx%bytesPerWord) * 8
}

// Set unconditionally stores v at idx.
func (b *ByteSet) Set(idx uint64, v byte) {
	wordIdx, shift := b.wordAndShift(idx)
	word := &b.words[wordIdx]
	for {
		old := word.Load()
		next := (old &^ (uint64(0xFF) << shift)) | (uint64(v) << shift)
		if word.CompareAndSwap(old, next) {
			return
		}
	}
}

// SaturatedIncrement increments the byte at idx by one, clamping at 255
// instead of wrapping.
func (b *ByteSet) SaturatedIncrement(idx uint64) {
	wordIdx, shift := b.wordAndShift(idx)
	word := &b.words[wordIdx]
	for {
		old := word.Load()
		cur := byte(old >> shift)
		if cur == 255 {
			return
		}
		next := (old &^ (uint64(0xFF) << shift)) | (uint64(cur+1) << shift)
		if word.CompareAndSwap(old, next) {
			return
		}
	}
}

// Clear zeroes every byte. Not safe to call concurrently with writers; the
// caller is responsible for quiescence.
func (b *ByteSet) Clear() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// ForEachNonZero visits every non-zero byte in [from, to) in index order,
// zeroing each slot as it's visited (a drain, not a peek). from and to must
// be multiples of SizeMultiple. Not safe to call concurrently with writers.
func (b *ByteSet) ForEachNonZero(from, to uint64, visit func(idx uint64, v byte)) {
	if from%SizeMultiple != 0 || to%SizeMultiple != 0 || from > to || to > b.size {
		fault.Trap("byteset", "invalid drain range [%d,%d) for size %d", from, to, b.size)
	}
	firstWord := from / bytesPerWord
	lastWord := to / bytesPerWord
	for w := firstWord; w < lastWord; w++ {
		word := &b.words[w]
		val := word.Load()
		if val == 0 {
			continue
		}
		word.Store(0)
		base := w * bytesPerWord
		for p := uint64(0); p < bytesPerWord; p++ {
			v := byte(val >> (8 * p))
			if v != 0 {
				visit(base+p, v)
			}
		}
	}
}

// SizeInBytes returns the number of bytes this set holds.
func (b *ByteSet) SizeInBytes() uint64 { return b.size }

// SizeMultiple returns the alignment constraint on drain range boundaries.
func (b *ByteSet) SizeMultiple() uint64 { return SizeMultiple }
