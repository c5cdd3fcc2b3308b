package idcodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, math.MaxUint64, math.MaxInt64, math.MaxInt64 + 1}
	for _, x := range cases {
		got := Sint64ToUint64(Uint64ToSint64(x))
		require.Equal(t, x, got)
	}
}

func TestGenerateIDIsNonDeterministic(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)
	require.NotEqual(t, a, b, "two draws from the random source should not collide in this test run")
}

func TestGenerateRespectsWidth(t *testing.T) {
	v, err := Generate(2)
	require.NoError(t, err)
	require.LessOrEqual(t, v, uint64(math.MaxUint16))
}
