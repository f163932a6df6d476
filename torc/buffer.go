package torc

import (
	"bytes"
	"math/rand"
	"sync/atomic"
)

// BufferSlots is the number of rotating slots in a Buffer TORC.
const BufferSlots = 128

// MaxBufferLen is the longest pair of byte strings a single slot can hold.
const MaxBufferLen = 127

// bufSlot holds one recorded pair of compared byte buffers, truncated to a
// common length. len is updated last and independently of buf1/buf2, so a
// reader can see a length that doesn't (yet, or ever, under concurrent
// writes) match what's actually been copied into the buffers — callers are
// expected to treat a slot's contents as best-effort, same as the integer
// table's torn pairs.
type bufSlot struct {
	length atomic.Int32
	buf1   [MaxBufferLen]byte
	buf2   [MaxBufferLen]byte
}

// Buffer is the recent-compares table for variable-length byte buffer
// comparisons (memcmp-style), independent of any fixed operand width.
type Buffer struct {
	table  [BufferSlots]bufSlot
	cursor atomic.Uint64
}

// NewBuffer allocates an empty Buffer TORC.
func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) nextCursor() uint64 {
	for {
		old := b.cursor.Load()
		next := (37*old + 89) % BufferSlots
		if b.cursor.CompareAndSwap(old, next) {
			return next
		}
	}
}

// Insert records a buffer compare's two operands, truncated to the shorter
// of the two lengths and capped at MaxBufferLen.
func (b *Buffer) Insert(p1, p2 []byte) {
	n := len(p1)
	if len(p2) < n {
		n = len(p2)
	}
	if n > MaxBufferLen {
		n = MaxBufferLen
	}
	k := b.nextCursor()
	slot := &b.table[k]
	copy(slot.buf1[:], p1[:n])
	copy(slot.buf2[:], p2[:n])
	slot.length.Store(int32(n))
}

// slotAt copies a slot's contents out, since its fields aren't updated
// atomically relative to each other.
func (b *Buffer) slotAt(idx int) (buf1, buf2 []byte, n int) {
	slot := &b.table[idx]
	n = int(slot.length.Load())
	if n < 0 || n > MaxBufferLen {
		return nil, nil, 0
	}
	buf1 = append([]byte(nil), slot.buf1[:n]...)
	buf2 = append([]byte(nil), slot.buf2[:n]...)
	return buf1, buf2, n
}

func matchSlot(buf1, buf2 []byte, n, elemWidth int, val []byte) (Entry, bool) {
	if n == 0 || n%elemWidth != 0 || n > len(val) {
		return Entry{}, false
	}
	if pos := findElementAligned(val, buf1, elemWidth); pos >= 0 {
		return Entry{HasPosition: true, Position: pos, Value: buf2}, true
	}
	if pos := findElementAligned(val, buf2, elemWidth); pos >= 0 {
		return Entry{HasPosition: true, Position: pos, Value: buf1}, true
	}
	return Entry{}, false
}

func findElementAligned(val, needle []byte, elemWidth int) int {
	if len(needle) == 0 || len(needle) > len(val) {
		return -1
	}
	for off := 0; off+len(needle) <= len(val); off += elemWidth {
		if bytes.Equal(val[off:off+len(needle)], needle) {
			return off / elemWidth
		}
	}
	return -1
}

// Match scans every slot and returns a dictionary entry for each whose
// length is a multiple of elemWidth and one of whose two buffers appears,
// element-aligned, inside val.
func (b *Buffer) Match(val []byte, elemWidth int) []Entry {
	var out []Entry
	for i := range b.table {
		buf1, buf2, n := b.slotAt(i)
		if e, ok := matchSlot(buf1, buf2, n, elemWidth, val); ok {
			out = append(out, e)
		}
	}
	return out
}

// GetMatchingAt checks a single slot for a match against val, the
// single-slot counterpart to Match used when mining a random slot.
func (b *Buffer) GetMatchingAt(idx int, val []byte, elemWidth int) (Entry, bool) {
	buf1, buf2, n := b.slotAt(idx)
	return matchSlot(buf1, buf2, n, elemWidth, val)
}

// RandomSideAt returns a position-less dictionary entry built from one side
// of the slot at idx, chosen by a fair coin, provided the slot's length is
// a multiple of elemWidth.
func (b *Buffer) RandomSideAt(rnd *rand.Rand, idx int, elemWidth int) (Entry, bool) {
	buf1, buf2, n := b.slotAt(idx)
	if n == 0 || n%elemWidth != 0 {
		return Entry{}, false
	}
	if rnd.Intn(2) == 0 {
		return Entry{Value: buf1}, true
	}
	return Entry{Value: buf2}, true
}
