package dictionary

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/covfeedback/core/torc"
)

func TestIntegerDictionaryMatchAndSaved(t *testing.T) {
	it := torc.NewInteger(4)
	it.Insert(10, 20)
	it.Insert(10, 30)

	d := NewInteger(4)
	require.True(t, d.IsEmpty())
	d.Match(10, it, 0, 1<<32-1)
	require.False(t, d.IsEmpty())
	require.Equal(t, 2, d.Size())

	rnd := rand.New(rand.NewSource(1))
	v, ok := d.RandomSaved(rnd)
	require.True(t, ok)
	require.Contains(t, []uint64{20, 30}, v)
}

func TestIntegerDictionaryRandomSavedEmptyIsFalse(t *testing.T) {
	d := NewInteger(4)
	rnd := rand.New(rand.NewSource(1))
	_, ok := d.RandomSaved(rnd)
	require.False(t, ok)
}

func TestIntegerDictionaryRandomTORCFallsBackToRandomSide(t *testing.T) {
	it := torc.NewInteger(8)
	// The cursor recurrence visits every slot once per TableSize() inserts,
	// so this fills the whole table and the randomly drawn slot holds (1, 2).
	for i := 0; i < it.TableSize(); i++ {
		it.Insert(1, 2)
	}
	d := NewInteger(8)
	rnd := rand.New(rand.NewSource(2))
	v, ok := d.RandomTORC(999, rnd, it, 0, ^uint64(0))
	require.True(t, ok)
	require.Contains(t, []uint64{1, 2}, v)
}

func TestIntegerDictionaryRandomTORCRespectsCallerRange(t *testing.T) {
	it := torc.NewInteger(8)
	it.Insert(1, 2)
	d := NewInteger(8)
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		_, ok := d.RandomTORC(999, rnd, it, 100, 200)
		require.False(t, ok, "1 and 2 both fall outside [100, 200]")
	}
}
