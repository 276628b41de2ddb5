package usecase

import (
	"time"

	"github.com/moomingle/go-backend/internal/domain"
)

// BREED USECASE

// AnimalImage представляет изображение животного, полученное от клиента.
type AnimalImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// ClassifyBreedReq — запрос классификации породы по изображению.
type ClassifyBreedReq struct {
	Image AnimalImage
}

// ClassificationSource — происхождение результата классификации.
type ClassificationSource string

const (
	SourceModel    ClassificationSource = "model"
	SourceFallback ClassificationSource = "fallback"
)

// BreedScore — нормализованный score одной породы.
type BreedScore struct {
	Breed string
	Score float64
}

// ClassifyBreedRes — результат классификации породы.
// AllScores отсортирован по убыванию score (стабильно, максимум 5 записей).
type ClassifyBreedRes struct {
	Breed      string
	Confidence float64
	AnimalType domain.AnimalType
	IsVerified bool
	AllScores  []BreedScore
	Source     ClassificationSource
}

// BreedListRes — списки поддерживаемых пород.
type BreedListRes struct {
	Buffalo []string
	Cattle  []string
	Total   int
}

// BIOMETRIC USECASE

// RegisterMuzzleReq — запрос регистрации биометрии носогубного зеркала.
type RegisterMuzzleReq struct {
	Image      AnimalImage
	ListingID  string
	AnimalName string
}

// DuplicateInfo — диагностика отклонённой регистрации: какой записи
// соответствует дубликат и с какой близостью.
type DuplicateInfo struct {
	ExistingMuzzleID string
	Similarity       float64
}

// RegisterMuzzleRes — результат регистрации.
// Отклонение по дубликату — бизнес-результат, а не ошибка: Registered=false
// и заполненный Duplicate.
type RegisterMuzzleRes struct {
	Registered bool
	MuzzleID   string
	Confidence float64
	Status     domain.MuzzleStatus
	Duplicate  *DuplicateInfo
}

// VerifyMuzzleReq — запрос проверки биометрии.
// ExpectedListingID == nil означает «без ограничения», а не «должен отсутствовать».
type VerifyMuzzleReq struct {
	Image             AnimalImage
	ExpectedListingID *string
}

// VerifyMuzzleRes — результат проверки. Отсутствие совпадения — нормальный
// отрицательный результат с лучшей наблюдавшейся близостью (0 при пустом реестре).
type VerifyMuzzleRes struct {
	Matched         bool
	MuzzleID        string
	ListingID       string
	AnimalName      string
	Confidence      float64
	IsExpectedMatch bool
	BestSimilarity  float64
}

// MuzzleStatusRes — статус биометрии для листинга.
type MuzzleStatusRes struct {
	MuzzleID     string
	Status       domain.MuzzleStatus
	RegisteredAt time.Time
	AnimalName   string
	Confidence   float64
}

// RegistryStatsRes — статистика реестра биометрий.
type RegistryStatsRes struct {
	TotalRegistered int
}

// LISTING USECASE

// ListingRow — одна строка CSV-файла с листингами (сырые значения).
type ListingRow struct {
	Line          int
	Name          string
	Breed         string
	AnimalType    string
	PriceRaw      string
	Location      string
	AgeRaw        string
	YieldRaw      string
	SellerName    string
	ImageURL      string
	IsVerifiedRaw string
}

// RowError — ошибка валидации одной строки CSV.
type RowError struct {
	Line    int
	Field   string
	Message string
}

// ImportListingsReq — запрос импорта листингов.
// DryRun валидирует и готовит строки, но не пишет в базу.
type ImportListingsReq struct {
	Rows   []ListingRow
	DryRun bool
}

// ImportListingsRes — результат импорта.
type ImportListingsRes struct {
	Imported int
	Skipped  int
	Errors   []RowError
}

// INFRASTRUCTURE

// StoreMuzzleImageReq — запрос сохранения изображения биометрии в S3.
// Снимок загружается до вставки записи в реестр, поэтому ключ объекта
// не содержит muzzle id.
type StoreMuzzleImageReq struct {
	ListingID string
	Image     AnimalImage
}

// BiometricEvent — событие реестра биометрий для Kafka.
type BiometricEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	MuzzleID   string    `json:"muzzle_id"`
	ListingID  string    `json:"listing_id"`
	Similarity float64   `json:"similarity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventMuzzleRegistered        = "muzzle_registered"
	EventMuzzleDuplicateRejected = "muzzle_duplicate_rejected"
	EventListingsImported        = "listings_imported"
)

// WriteRawMessageReq — запрос отправки готового payload в Kafka (outbox-воркер).
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

// OutboxEvent — запись transactional outbox для событий импорта.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewAnimalImage(data []byte, mimeType string, size int64, name string) *AnimalImage {
	return &AnimalImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewClassifyBreedReq(image AnimalImage) *ClassifyBreedReq {
	return &ClassifyBreedReq{Image: image}
}

func NewRegisterMuzzleReq(image AnimalImage, listingID, animalName string) *RegisterMuzzleReq {
	return &RegisterMuzzleReq{
		Image:      image,
		ListingID:  listingID,
		AnimalName: animalName,
	}
}

func NewVerifyMuzzleReq(image AnimalImage, expectedListingID *string) *VerifyMuzzleReq {
	return &VerifyMuzzleReq{
		Image:             image,
		ExpectedListingID: expectedListingID,
	}
}

func NewStoreMuzzleImageReq(listingID string, image AnimalImage) *StoreMuzzleImageReq {
	return &StoreMuzzleImageReq{
		ListingID: listingID,
		Image:     image,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID, eventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}
