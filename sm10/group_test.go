package sm10

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAddress_CanonicalCombinations(t *testing.T) {
	cases := []struct {
		axes []int
		want [GroupAddressLen]byte
	}{
		{[]int{1, 2, 3}, GroupAddressXYZ},
		{[]int{1, 2}, GroupAddressXY},
		{[]int{1, 3}, GroupAddressXZ},
		{[]int{2, 3}, GroupAddressYZ},
	}

	for _, c := range cases {
		addr, err := GroupAddress(c.axes)
		require.NoError(t, err, "axes %v", c.axes)
		assert.Equal(t, c.want[:], addr, "axes %v", c.axes)
	}
}

func TestGroupAddress_OrderIndependent(t *testing.T) {
	a, err := GroupAddress([]int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, GroupAddressXYZ[:], a)
}

func TestGroupAddress_SingleAxis(t *testing.T) {
	addr, err := GroupAddress([]int{4})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 8}, addr)
}

func TestGroupAddress_SecondUnit(t *testing.T) {
	addr, err := GroupAddress([]int{5, 6})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 3, 0}, addr)
}

func TestGroupAddress_Rejects(t *testing.T) {
	for _, axes := range [][]int{nil, {}, {0}, {9}, {-1}, {1, 1}} {
		_, err := GroupAddress(axes)
		require.Error(t, err, "axes %v", axes)
		_, ok := err.(*ArgumentError)
		assert.True(t, ok, "axes %v: want *ArgumentError, got %T", axes, err)
	}
}
