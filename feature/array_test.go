package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayPushAndClear(t *testing.T) {
	a := NewArray(4)
	require.Equal(t, 0, a.Size())
	a.Push(PCFeature(1))
	a.Push(PCFeature(2))
	require.Equal(t, 2, a.Size())
	require.Equal(t, []Feature{PCFeature(1), PCFeature(2)}, a.Data())
	a.Clear()
	require.Equal(t, 0, a.Size())
	require.Empty(t, a.Data())
}

func TestArrayDropsPastCapacity(t *testing.T) {
	a := NewArray(2)
	a.Push(PCFeature(1))
	a.Push(PCFeature(2))
	a.Push(PCFeature(3))
	require.Equal(t, 2, a.Size())
	require.Equal(t, 2, a.Capacity())
	require.Equal(t, []Feature{PCFeature(1), PCFeature(2)}, a.Data())
}
