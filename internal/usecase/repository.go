package usecase

import (
	"context"

	"github.com/moomingle/go-backend/internal/domain"
)

// MuzzleRepository — хранилище биометрических записей.
// Scan возвращает снимок всех записей в порядке вставки: порядок обязан быть
// стабильным, на нём построены разрешение ничьих и StatusFor.
type MuzzleRepository interface {
	Insert(ctx context.Context, record *domain.MuzzleRecord) error
	Scan(ctx context.Context) ([]domain.MuzzleRecord, error)
	FindByListing(ctx context.Context, listingID string) (*domain.MuzzleRecord, error)
	Count(ctx context.Context) (int, error)
}

type ListingRepository interface {
	InsertBatch(ctx context.Context, listings []domain.Listing) (int, error)
}

type CacheRepository interface {
	GetClassification(ctx context.Context, imageHash string) (*ClassifyBreedRes, error)
	SetClassification(ctx context.Context, imageHash string, res *ClassifyBreedRes) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
