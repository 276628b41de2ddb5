package embedder

import (
	"context"
	"crypto/sha256"
)

// HashDimension — размерность вектора хэш-фолбэка: по одной компоненте на
// байт SHA-256.
const HashDimension = 32

// HashEmbedder — детерминированный фолбэк-вариант embedder'а для работы без
// ML-сервиса. Вектор строится из SHA-256 байтов изображения: одинаковые
// изображения дают одинаковые векторы, а любые различия — заметно другие.
// Размерность намеренно не совпадает с размерностью модели: предсказание по
// прототипам с таким вектором невозможно и деградирует в фолбэк-результат,
// тогда как реестр биометрии остаётся полностью работоспособным.
type HashEmbedder struct{}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Embed возвращает 32-мерный вектор с компонентами из [0, 1].
func (h *HashEmbedder) Embed(_ context.Context, image []byte) ([]float32, error) {
	sum := sha256.Sum256(image)

	vector := make([]float32, HashDimension)
	for i, b := range sum {
		vector[i] = float32(b) / 255.0
	}

	return vector, nil
}
