// Package vecsim содержит операции сравнения embedding-векторов.
package vecsim

import (
	"math"

	"github.com/moomingle/go-backend/pkg/e"
)

// Cosine вычисляет косинусную близость двух векторов одинаковой размерности.
// Возвращает значение в диапазоне [-1, 1]; если хотя бы один вектор нулевой,
// возвращает ровно 0.0 вместо деления на ноль.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, e.ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, e.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// NormalizeScore переводит косинусную близость из [-1, 1] в [0, 1].
// Отображение монотонное: порядок исходных значений сохраняется.
func NormalizeScore(cos float64) float64 {
	normalized := (cos + 1) / 2
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}

	return normalized
}

// Round4 округляет до 4 знаков после запятой.
// Половинные значения округляются от нуля (math.Round).
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
