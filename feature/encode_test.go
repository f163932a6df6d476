package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertPCFeatureRoundTrip(t *testing.T) {
	f := PCFeature(1234)
	require.Equal(t, uint64(1234), ConvertPCFeatureToPCIndex(f))
}

func TestConvertPCFeatureWrongDomainPanics(t *testing.T) {
	require.Panics(t, func() { ConvertPCFeatureToPCIndex(DomainCounters8.Begin()) })
}

func TestConvert8BitCounterToNumber(t *testing.T) {
	cases := []struct {
		counter uint8
		want    uint64
	}{
		{1, 56},
		{2, 57},
		{3, 57},
		{128, 63},
		{255, 63},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Convert8BitCounterToNumber(7, c.counter), "counter=%d", c.counter)
	}
}

func TestConvert8BitCounterZeroPanics(t *testing.T) {
	require.Panics(t, func() { Convert8BitCounterToNumber(7, 0) })
}

func TestConvertPCPairToNumber(t *testing.T) {
	require.Equal(t, uint64(35), ConvertPCPairToNumber(3, 5, 10))
	require.Equal(t, uint64(53), ConvertPCPairToNumber(5, 3, 10))
}

func TestABToCmpModDiff(t *testing.T) {
	require.Equal(t, uint64(0), ABToCmpModDiff(10, 10))
	require.Equal(t, uint64(5), ABToCmpModDiff(15, 10))
	require.Equal(t, uint64(32+5), ABToCmpModDiff(10, 15))
	require.Equal(t, uint64(0), ABToCmpModDiff(10, 10000))
}

func TestABToCmpHammingRequiresDifference(t *testing.T) {
	require.Panics(t, func() { ABToCmpHamming(5, 5) })
	require.Equal(t, uint64(0), ABToCmpHamming(0, 1))
	require.Equal(t, uint64(63), ABToCmpHamming(0, ^uint64(0)))
}

func TestABToCmpDiffLogRequiresDifference(t *testing.T) {
	require.Panics(t, func() { ABToCmpDiffLog(5, 5) })
	require.Equal(t, uint64(63), ABToCmpDiffLog(0, 1))
	require.Equal(t, uint64(0), ABToCmpDiffLog(0, ^uint64(0)))
}

func TestCmpFeaturesStayWithinTheirDomain(t *testing.T) {
	pc := uintptr(0xdeadbeef)
	require.True(t, DomainCmpEq.Contains(CmpEqFeature(pc)))
	require.True(t, DomainCmpModDiff.Contains(CmpModDiffFeature(pc, 1, 2)))
	require.True(t, DomainCmpHamming.Contains(CmpHammingFeature(pc, 1, 2)))
	require.True(t, DomainCmpDiffLog.Contains(CmpDiffLogFeature(pc, 1, 2)))
}

func TestCmpFeaturesAreDeterministic(t *testing.T) {
	pc := uintptr(0x1000)
	require.Equal(t, CmpModDiffFeature(pc, 3, 9), CmpModDiffFeature(pc, 3, 9))
	require.NotEqual(t, CmpModDiffFeature(pc, 3, 9), CmpModDiffFeature(pc+8, 3, 9))
}
