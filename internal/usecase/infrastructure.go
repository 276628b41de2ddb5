package usecase

import (
	"context"

	"github.com/moomingle/go-backend/internal/domain"
)

// Embedder — источник embedding-векторов для изображений.
// Конкретный вариант (внешняя модель или хэш-фолбэк) выбирается один раз
// при старте приложения; вызывающий код о варианте не знает.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// PrototypeProvider отдаёт загруженный набор прототипов пород.
// Возвращает e.ErrNoPrototypes, если артефакт модели не удалось загрузить.
type PrototypeProvider interface {
	Prototypes() (*domain.PrototypeSet, error)
}

type ImagesInfra interface {
	StoreMuzzleImage(ctx context.Context, req *StoreMuzzleImageReq) (string, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteBiometricEvent(ctx context.Context, event *BiometricEvent) error
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
