package cdma

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGenerateFour(t *testing.T) {
	m, err := Generate(4)
	require.NoError(t, err)

	want := Matrix{
		{1, 1, 1, 1},
		{1, -1, 1, -1},
		{1, 1, -1, -1},
		{1, -1, -1, 1},
	}
	assert.Equal(t, want, m)
}

func TestGenerateBaseCase(t *testing.T) {
	m, err := Generate(1)
	require.NoError(t, err)
	assert.Equal(t, Matrix{{1}}, m)
}

func TestGenerateMatchesDoubling(t *testing.T) {
	m := Matrix{{1}}
	for n := 2; n <= 64; n *= 2 {
		m = Double(m)
		got, err := Generate(n)
		require.NoError(t, err)
		assert.Equal(t, m, got, "size %d", n)
	}
}

func TestGenerateOrthogonal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := 1 << rapid.IntRange(0, 7).Draw(t, "exp")
		m, err := Generate(n)
		require.NoError(t, err)
		require.Len(t, m, n)

		for i := range m {
			require.Len(t, m[i], n)
			assert.Equal(t, n, Dot(m[i], m[i]), "row %d self product", i)
			for j := i + 1; j < n; j++ {
				assert.Zero(t, Dot(m[i], m[j]), "rows %d and %d", i, j)
			}
		}
		for _, c := range m[0] {
			assert.Equal(t, Chip(1), c)
		}
	})
}

func TestGenerateIdempotent(t *testing.T) {
	a, err := Generate(16)
	require.NoError(t, err)
	b, err := Generate(16)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// results must not share backing arrays
	a[1][1] = 42
	assert.Equal(t, Chip(-1), b[1][1])
}

func TestGenerateInvalidSize(t *testing.T) {
	for _, n := range []int{0, -1, -4, 3, 6, 12, 100} {
		m, err := Generate(n)
		assert.Nil(t, m, "size %d", n)
		require.Error(t, err, "size %d", n)
		assert.True(t, errors.Is(err, ErrInvalidSize), "size %d", n)

		var sizeErr *SizeError
		require.True(t, errors.As(err, &sizeErr))
		assert.Equal(t, n, sizeErr.Size)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := map[int]int{
		-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 8: 8, 9: 16, 17: 32, 1000: 1024,
	}
	for in, want := range tests {
		assert.Equal(t, want, NextPowerOfTwo(in), "input %d", in)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(2))
	assert.True(t, IsPowerOfTwo(1024))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(-2))
	assert.False(t, IsPowerOfTwo(3))
	assert.False(t, IsPowerOfTwo(24))
}
