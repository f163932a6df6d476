// Package torc implements the tables of recent compares: small, bounded,
// lossy tables that record operands seen at comparison instructions, mined
// by the dictionary package into mutation hints.
package torc

// Entry is a single mutation hint mined out of a table: a value to try,
// optionally anchored to a byte offset in the input that suggested it.
type Entry struct {
	HasPosition bool
	Position    int
	Value       []byte
}

// Equal reports whether two entries are structurally identical.
func (e Entry) Equal(o Entry) bool {
	if e.HasPosition != o.HasPosition || (e.HasPosition && e.Position != o.Position) {
		return false
	}
	if len(e.Value) != len(o.Value) {
		return false
	}
	for i := range e.Value {
		if e.Value[i] != o.Value[i] {
			return false
		}
	}
	return true
}
