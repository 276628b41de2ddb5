package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/moomingle/go-backend/pkg/metrics"
	"github.com/moomingle/go-backend/pkg/vecsim"
)

const maxReportedScores = 5

// BreedUseCase реализует классификацию породы по ближайшему прототипу.
type BreedUseCase struct {
	prototypes        PrototypeProvider
	embedder          Embedder
	cacheRepo         CacheRepository
	verifiedThreshold float64
	logger            logger.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBreedUC(
	prototypes PrototypeProvider,
	embedder Embedder,
	cacheRepo CacheRepository,
	verifiedThreshold float64,
	logger logger.Logger,
) *BreedUseCase {
	return &BreedUseCase{
		prototypes:        prototypes,
		embedder:          embedder,
		cacheRepo:         cacheRepo,
		verifiedThreshold: verifiedThreshold,
		logger:            logger,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Classify определяет породу животного на изображении.
// Любой сбой пути предсказания (нет прототипов, недоступна модель, не
// совпала размерность) деградирует в синтетический фолбэк-результат с
// Source=fallback: запрос предсказания никогда не падает из-за модели.
func (b *BreedUseCase) Classify(ctx context.Context, req *ClassifyBreedReq) (*ClassifyBreedRes, error) {
	const op = "BreedUseCase.Classify"

	if len(req.Image.Data) == 0 {
		return nil, e.Wrap(op, e.ErrMissingImage)
	}

	imageHash := hashImage(req.Image.Data)
	if b.cacheRepo != nil {
		if cached, err := b.cacheRepo.GetClassification(ctx, imageHash); err == nil && cached != nil {
			return cached, nil
		}
	}

	res, err := b.classifyWithModel(ctx, req.Image.Data)
	if err != nil {
		b.logger.Warnf("%s: falling back to synthetic result: %v", op, err)
		metrics.Classifications.WithLabelValues(string(SourceFallback)).Inc()
		return b.fallbackResult(), nil
	}

	metrics.Classifications.WithLabelValues(string(SourceModel)).Inc()

	// Фолбэк-результаты не кэшируются, модельные — в фоне.
	if b.cacheRepo != nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := b.cacheRepo.SetClassification(bgCtx, imageHash, res); err != nil {
				b.logger.Warnf("Failed to cache classification in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return res, nil
}

// Breeds возвращает списки поддерживаемых пород.
func (b *BreedUseCase) Breeds() *BreedListRes {
	return &BreedListRes{
		Buffalo: domain.BuffaloBreeds,
		Cattle:  domain.CattleBreeds,
		Total:   len(domain.BuffaloBreeds) + len(domain.CattleBreeds),
	}
}

// classifyWithModel считает нормализованные score всех прототипов и выбирает
// лучший. При равных score выигрывает первая порода в порядке загрузки набора.
func (b *BreedUseCase) classifyWithModel(ctx context.Context, image []byte) (*ClassifyBreedRes, error) {
	protoSet, err := b.prototypes.Prototypes()
	if err != nil {
		return nil, err
	}

	embedding, err := b.embedder.Embed(ctx, image)
	if err != nil {
		return nil, err
	}

	prototypes := protoSet.All()
	if len(prototypes) == 0 {
		return nil, e.ErrNoPrototypes
	}

	scores := make([]BreedScore, 0, len(prototypes))
	best := 0
	for i, proto := range prototypes {
		cos, err := vecsim.Cosine(embedding, proto.Vector)
		if err != nil {
			return nil, err
		}

		score := vecsim.Round4(vecsim.NormalizeScore(cos))
		scores = append(scores, BreedScore{Breed: proto.Breed, Score: score})
		if score > scores[best].Score {
			best = i
		}
	}

	predicted := scores[best]

	// Стабильная сортировка сохраняет исходный порядок прототипов при ничьих.
	sorted := make([]BreedScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > maxReportedScores {
		sorted = sorted[:maxReportedScores]
	}

	return &ClassifyBreedRes{
		Breed:      predicted.Breed,
		Confidence: predicted.Score,
		AnimalType: domain.AnimalTypeFor(predicted.Breed),
		IsVerified: predicted.Score >= b.verifiedThreshold,
		AllScores:  sorted,
		Source:     SourceModel,
	}, nil
}

// fallbackResult возвращает синтетический результат, когда путь предсказания
// недоступен: псевдослучайная порода из короткого списка и confidence из
// [0.75, 0.90). Результат всегда помечен Source=fallback и IsVerified=false.
func (b *BreedUseCase) fallbackResult() *ClassifyBreedRes {
	b.rndMu.Lock()
	breed := domain.FallbackBreeds[b.rnd.Intn(len(domain.FallbackBreeds))]
	confidence := 0.75 + b.rnd.Float64()*0.15
	b.rndMu.Unlock()

	return &ClassifyBreedRes{
		Breed:      breed,
		Confidence: confidence,
		AnimalType: domain.AnimalTypeFor(breed),
		IsVerified: false,
		AllScores:  []BreedScore{{Breed: breed, Score: 0.85}},
		Source:     SourceFallback,
	}
}

// hashImage возвращает hex-представление SHA-256 от байтов изображения.
func hashImage(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
