package dictionary

import (
	"encoding/binary"
	"math/rand"

	"github.com/covfeedback/core/torc"
)

// Container mines mutation hints for a byte-sequence value made of
// fixed-width elements (e.g. a slice of int32, or plain bytes for width 1).
type Container struct {
	width int // element width in bytes: 1, 2, 4, or 8
}

// NewContainer builds a Container dictionary for the given element width.
func NewContainer(width int) *Container {
	return &Container{width: width}
}

func encodeWidth(v uint64, width int) []byte {
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, v)
	}
	return buf
}

// Match scans val for occurrences of operands recorded in the buffer TORC
// (at the container's own element width) and, by reinterpreting integer
// TORC operands as element-aligned byte runs, operands recorded in the
// integer TORCs. The 4-byte i32-native pass and the 32-bit-truncation of
// the 8-byte i64 pass only apply when the element width is 4 bytes or
// less, since a 4-byte operand can't align to a wider element; the 8-byte
// i64-native (untruncated) pass applies to every element width, since 8 is
// a multiple of 1, 2, 4, and 8.
func (c *Container) Match(val []byte, bufTorc *torc.Buffer, intTorc4, intTorc8 *torc.Integer) []Entry {
	var out []Entry
	out = append(out, bufTorc.Match(val, c.width)...)

	scan := func(t *torc.Integer, operandWidth int, truncate bool) {
		for i := 0; i < t.TableSize(); i++ {
			lhs, rhs := t.EntryAt(i)
			if truncate {
				lhs &= 0xFFFFFFFF
				rhs &= 0xFFFFFFFF
			}
			if e, ok := c.matchOperand(val, encodeWidth(lhs, operandWidth), encodeWidth(rhs, operandWidth)); ok {
				out = append(out, e)
			}
		}
	}
	if c.width <= 4 {
		scan(intTorc4, 4, false)
		scan(intTorc8, 4, true)
	}
	scan(intTorc8, 8, false)
	return out
}

// matchOperand looks for either operand buffer as a contiguous,
// element-aligned run inside val, and if found returns the other operand
// as the suggested replacement at that element offset.
func (c *Container) matchOperand(val, buf1, buf2 []byte) (Entry, bool) {
	n := len(buf1)
	if n == 0 || n%c.width != 0 || n > len(val) {
		return Entry{}, false
	}
	if off := findRun(val, buf1, c.width); off >= 0 {
		return Entry{HasPosition: true, Position: off / c.width, Value: buf2}, true
	}
	if off := findRun(val, buf2, c.width); off >= 0 {
		return Entry{HasPosition: true, Position: off / c.width, Value: buf1}, true
	}
	return Entry{}, false
}

func findRun(val, needle []byte, width int) int {
	for off := 0; off+len(needle) <= len(val); off += width {
		if bytesEqual(val[off:off+len(needle)], needle) {
			return off
		}
	}
	return -1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RandomTORC draws one mutation hint by a fair coin between the buffer TORC
// and the integer TORCs. The buffer side falls back to an unconditional
// random side of the drawn slot when it doesn't match val, the same way
// the integer dictionary's RandomTORC does. The integer side has no such
// fallback: for element widths of 4 bytes or less it picks among the
// i32-native, i64-truncated-to-32, and i64-native entries with equal
// probability and only returns a hint if that draw actually matches val;
// for 8-byte elements it always draws from the i64-native table.
func (c *Container) RandomTORC(val []byte, rnd *rand.Rand, bufTorc *torc.Buffer, intTorc4, intTorc8 *torc.Integer) (Entry, bool) {
	if rnd.Intn(2) == 0 {
		idx := rnd.Intn(torc.BufferSlots)
		if e, ok := bufTorc.GetMatchingAt(idx, val, c.width); ok {
			return e, true
		}
		return bufTorc.RandomSideAt(rnd, idx, c.width)
	}

	if c.width <= 4 {
		switch rnd.Intn(3) {
		case 0:
			lhs, rhs := intTorc4.RandomEntry(rnd)
			return c.matchOperand(val, encodeWidth(lhs, 4), encodeWidth(rhs, 4))
		case 1:
			lhs, rhs := intTorc8.RandomEntry(rnd)
			return c.matchOperand(val, encodeWidth(lhs&0xFFFFFFFF, 4), encodeWidth(rhs&0xFFFFFFFF, 4))
		default:
			lhs, rhs := intTorc8.RandomEntry(rnd)
			return c.matchOperand(val, encodeWidth(lhs, 8), encodeWidth(rhs, 8))
		}
	}
	lhs, rhs := intTorc8.RandomEntry(rnd)
	return c.matchOperand(val, encodeWidth(lhs, 8), encodeWidth(rhs, 8))
}
