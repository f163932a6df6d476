package torc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryEqual(t *testing.T) {
	a := Entry{HasPosition: true, Position: 3, Value: []byte("ab")}
	b := Entry{HasPosition: true, Position: 3, Value: []byte("ab")}
	c := Entry{HasPosition: true, Position: 4, Value: []byte("ab")}
	d := Entry{HasPosition: false, Value: []byte("ab")}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
}
