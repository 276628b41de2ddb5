package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/moomingle/go-backend/pkg/metrics"
	"github.com/moomingle/go-backend/pkg/vecsim"
)

// BiometricUseCase реализует регистрацию и проверку биометрии носогубного
// зеркала поверх реестра записей.
//
// Поиск — полный линейный скан реестра, O(N) на операцию. Для ожидаемых
// объёмов (десятки — тысячи записей) это осознанный выбор в пользу простоты
// и воспроизводимости порядка обхода; ANN-индекс изменил бы контракт
// разрешения ничьих.
type BiometricUseCase struct {
	muzzleRepo  MuzzleRepository
	embedder    Embedder
	imagesInfra ImagesInfra
	producer    MessageProducer
	logger      logger.Logger

	duplicateThreshold float64
	matchThreshold     float64
	enrollConfidence   float64

	// registerMu делает скан дубликатов и вставку атомарными относительно
	// других регистраций (check-then-act без него гоняется).
	registerMu sync.Mutex
}

func NewBiometricUC(
	muzzleRepo MuzzleRepository,
	embedder Embedder,
	imagesInfra ImagesInfra,
	producer MessageProducer,
	logger logger.Logger,
	duplicateThreshold float64,
	matchThreshold float64,
	enrollConfidence float64,
) *BiometricUseCase {
	return &BiometricUseCase{
		muzzleRepo:         muzzleRepo,
		embedder:           embedder,
		imagesInfra:        imagesInfra,
		producer:           producer,
		logger:             logger,
		duplicateThreshold: duplicateThreshold,
		matchThreshold:     matchThreshold,
		enrollConfidence:   enrollConfidence,
	}
}

// Register регистрирует новую биометрию для листинга.
//
// Если близость к любой существующей записи превышает порог дубликатов,
// регистрация отклоняется бизнес-результатом (не ошибкой) с id конфликтующей
// записи и измеренной близостью. Порог дубликатов (0.95) намеренно выше
// порога верификации (0.75): пропущенный дубликат дешевле, чем блокировка
// легитимной регистрации визуально похожего, но другого животного.
func (b *BiometricUseCase) Register(ctx context.Context, req *RegisterMuzzleReq) (*RegisterMuzzleRes, error) {
	const op = "BiometricUseCase.Register"

	if err := b.validateRegister(req); err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return nil, e.Wrap(op, err)
	}

	features, err := b.embedder.Embed(ctx, req.Image.Data)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrEmbedderUnavailable))
	}

	// Снимок загружается до критической секции, чтобы не держать сетевой
	// ввод-вывод под глобальным замком. Если регистрация не состоится,
	// загруженный объект убирает фоновая очистка.
	imageKey := b.storeImage(ctx, req)

	b.registerMu.Lock()
	res, err := b.registerLocked(ctx, req, features)
	b.registerMu.Unlock()
	if err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		b.discardImage(imageKey)
		return nil, e.Wrap(op, err)
	}

	if res.Duplicate != nil {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		b.discardImage(imageKey)
		b.publishEvent(ctx, EventMuzzleDuplicateRejected, res.Duplicate.ExistingMuzzleID, req.ListingID, res.Duplicate.Similarity)
		return res, nil
	}

	metrics.Registrations.WithLabelValues("registered").Inc()
	if count, err := b.muzzleRepo.Count(ctx); err == nil {
		metrics.RegistrySize.Set(float64(count))
	}

	b.publishEvent(ctx, EventMuzzleRegistered, res.MuzzleID, req.ListingID, 0)

	b.logger.Infof("Registered muzzle %s for listing %s", res.MuzzleID, req.ListingID)
	return res, nil
}

// registerLocked выполняет критическую секцию регистрации: скан дубликатов и
// вставку. Вызывается только под registerMu.
func (b *BiometricUseCase) registerLocked(ctx context.Context, req *RegisterMuzzleReq, features []float32) (*RegisterMuzzleRes, error) {
	records, err := b.muzzleRepo.Scan(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for i := range records {
		similarity, err := vecsim.Cosine(features, records[i].Features)
		if err != nil {
			return nil, err
		}

		if similarity > b.duplicateThreshold {
			metrics.ScanDuration.Observe(time.Since(start).Seconds())
			return &RegisterMuzzleRes{
				Registered: false,
				Duplicate: &DuplicateInfo{
					ExistingMuzzleID: records[i].ID,
					Similarity:       vecsim.Round4(similarity),
				},
			}, nil
		}
	}
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	muzzleID := newMuzzleID(records)
	record := domain.NewMuzzleRecord(muzzleID, append([]float32(nil), features...), req.ListingID, req.AnimalName)
	if err := b.muzzleRepo.Insert(ctx, record); err != nil {
		return nil, err
	}

	return &RegisterMuzzleRes{
		Registered: true,
		MuzzleID:   muzzleID,
		Confidence: b.enrollConfidence,
		Status:     domain.MuzzleStatusVerified,
	}, nil
}

// Verify ищет ближайшую запись реестра для предъявленного изображения.
// Отсутствие совпадения — нормальный отрицательный результат, а не ошибка:
// вызывающий получает лучшую наблюдавшуюся близость (0 при пустом реестре),
// чтобы отличать «близко, но мало» от «реестр пуст».
func (b *BiometricUseCase) Verify(ctx context.Context, req *VerifyMuzzleReq) (*VerifyMuzzleRes, error) {
	const op = "BiometricUseCase.Verify"

	if len(req.Image.Data) == 0 {
		metrics.Verifications.WithLabelValues("invalid").Inc()
		return nil, e.Wrap(op, e.ErrMissingImage)
	}

	features, err := b.embedder.Embed(ctx, req.Image.Data)
	if err != nil {
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrEmbedderUnavailable))
	}

	records, err := b.muzzleRepo.Scan(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	start := time.Now()
	var (
		best    *domain.MuzzleRecord
		bestSim float64
	)
	for i := range records {
		similarity, err := vecsim.Cosine(features, records[i].Features)
		if err != nil {
			metrics.Verifications.WithLabelValues("invalid").Inc()
			return nil, e.Wrap(op, err)
		}

		// Строгое сравнение: при равных максимумах остаётся первый найденный.
		if similarity > bestSim {
			bestSim = similarity
			best = &records[i]
		}
	}
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	if best == nil || bestSim < b.matchThreshold {
		metrics.Verifications.WithLabelValues("no_match").Inc()
		return &VerifyMuzzleRes{
			Matched:        false,
			BestSimilarity: vecsim.Round4(bestSim),
		}, nil
	}

	isExpected := req.ExpectedListingID == nil || *req.ExpectedListingID == best.ListingID

	metrics.Verifications.WithLabelValues("match").Inc()
	return &VerifyMuzzleRes{
		Matched:         true,
		MuzzleID:        best.ID,
		ListingID:       best.ListingID,
		AnimalName:      best.AnimalName,
		Confidence:      vecsim.Round4(bestSim),
		IsExpectedMatch: isExpected,
		BestSimilarity:  vecsim.Round4(bestSim),
	}, nil
}

// StatusFor возвращает статус биометрии для листинга: первую запись с этим
// listing_id в порядке вставки. Листинг, зарегистрированный дважды под
// разными muzzle_id, даёт зависящий от порядка результат — известное
// ограничение текущей модели (listing_id не уникален).
func (b *BiometricUseCase) StatusFor(ctx context.Context, listingID string) (*MuzzleStatusRes, error) {
	const op = "BiometricUseCase.StatusFor"

	if strings.TrimSpace(listingID) == "" {
		return nil, e.Wrap(op, e.ErrMissingListingID)
	}

	record, err := b.muzzleRepo.FindByListing(ctx, listingID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &MuzzleStatusRes{
		MuzzleID:     record.ID,
		Status:       record.Status,
		RegisteredAt: record.RegisteredAt,
		AnimalName:   record.AnimalName,
		Confidence:   b.enrollConfidence,
	}, nil
}

// Stats возвращает статистику реестра.
func (b *BiometricUseCase) Stats(ctx context.Context) (*RegistryStatsRes, error) {
	const op = "BiometricUseCase.Stats"

	count, err := b.muzzleRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &RegistryStatsRes{TotalRegistered: count}, nil
}

func (b *BiometricUseCase) validateRegister(req *RegisterMuzzleReq) error {
	if len(req.Image.Data) == 0 {
		return e.ErrMissingImage
	}

	if strings.TrimSpace(req.ListingID) == "" {
		return e.ErrMissingListingID
	}

	return nil
}

// storeImage сохраняет изображение биометрии в S3 (best-effort) и возвращает
// ключ объекта, пустой при отказе загрузки.
func (b *BiometricUseCase) storeImage(ctx context.Context, req *RegisterMuzzleReq) string {
	if b.imagesInfra == nil {
		return ""
	}

	key, err := b.imagesInfra.StoreMuzzleImage(ctx, NewStoreMuzzleImageReq(req.ListingID, req.Image))
	if err != nil {
		b.logger.Warnf("Failed to store muzzle image for listing %s: %v", req.ListingID, err)
		return ""
	}

	return key
}

// discardImage запускает фоновую очистку снимка, загруженного для
// несостоявшейся регистрации.
func (b *BiometricUseCase) discardImage(key string) {
	if b.imagesInfra == nil || key == "" {
		return
	}

	b.imagesInfra.CleanupImages([]string{key})
}

// publishEvent отправляет событие реестра в Kafka (best-effort).
func (b *BiometricUseCase) publishEvent(ctx context.Context, eventType, muzzleID, listingID string, similarity float64) {
	if b.producer == nil {
		return
	}

	event := &BiometricEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		MuzzleID:   muzzleID,
		ListingID:  listingID,
		Similarity: similarity,
		OccurredAt: time.Now().UTC(),
	}

	if err := b.producer.WriteBiometricEvent(ctx, event); err != nil {
		b.logger.Warnf("Failed to publish %s event: %v", eventType, err)
	}
}

// newMuzzleID генерирует новый идентификатор записи, гарантированно не
// совпадающий ни с одним существующим. Перегенерация под registerMu делает
// уникальность гарантией, а не вероятностью.
func newMuzzleID(existing []domain.MuzzleRecord) string {
	taken := make(map[string]bool, len(existing))
	for i := range existing {
		taken[existing[i].ID] = true
	}

	for {
		raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
		id := "MZL-" + raw[:12]
		if !taken[id] {
			return id
		}
	}
}
