package vecsim

import (
	"testing"

	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineIdentity(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}

	got, err := Cosine(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCosineZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{1, 2, 3}

	got, err := Cosine(zero, other)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = Cosine(zero, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCosineSymmetric(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{-4, 3, 0.5, 2}

	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestCosineOrthogonalAndOpposite(t *testing.T) {
	x := []float32{1, 0}
	y := []float32{0, 1}
	negX := []float32{-1, 0}

	got, err := Cosine(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)

	got, err = Cosine(x, negX)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, 1e-9)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	require.ErrorIs(t, err, e.ErrDimensionMismatch)
}

func TestCosineEmptyVector(t *testing.T) {
	_, err := Cosine(nil, []float32{1})
	require.ErrorIs(t, err, e.ErrEmptyVector)

	_, err = Cosine([]float32{1}, []float32{})
	require.ErrorIs(t, err, e.ErrEmptyVector)
}

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeScore(-1))
	assert.Equal(t, 0.5, NormalizeScore(0))
	assert.Equal(t, 1.0, NormalizeScore(1))
	assert.Equal(t, 0.7, NormalizeScore(0.4))

	// Значения за пределами [-1, 1] зажимаются
	assert.Equal(t, 0.0, NormalizeScore(-1.5))
	assert.Equal(t, 1.0, NormalizeScore(1.5))
}

// Нормализация сохраняет порядок исходных косинусов.
func TestNormalizeScoreMonotonic(t *testing.T) {
	values := []float64{-1, -0.7, -0.1, 0, 0.1, 0.4, 0.95, 1}
	for i := 1; i < len(values); i++ {
		assert.Less(t, NormalizeScore(values[i-1]), NormalizeScore(values[i]))
	}
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12345))
	assert.Equal(t, 0.1234, Round4(0.12344))
	assert.Equal(t, -0.1235, Round4(-0.12345))
	assert.Equal(t, 1.0, Round4(0.99999))
}
