package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEncodeDecodeRoundTrip(t *testing.T) {
	vec := Vector{0.5, -0.25, 0, 1.5e-7}

	decoded, err := DecodeVector(vec.Encode())
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)
}

func TestDecodeVectorEmptyString(t *testing.T) {
	decoded, err := DecodeVector("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeVectorMalformed(t *testing.T) {
	for _, input := range []string{"abc", "0.5,xyz", "0.5,,0.25"} {
		_, err := DecodeVector(input)
		assert.ErrorIs(t, err, ErrMalformedVector, "input %q", input)
	}
}

func TestVectorNorm(t *testing.T) {
	vec := Vector{3, 4}
	assert.InDelta(t, 5.0, vec.Norm(), 1e-9)
}

func TestVectorIsZero(t *testing.T) {
	assert.True(t, Vector{0, 0, 0}.IsZero())
	assert.False(t, Vector{0, math.SmallestNonzeroFloat32, 0}.IsZero())
}
