package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/internal/repository/redis/converter"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/clients"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует результаты классификации пород по хэшу изображения.
// Промах кэша — не ошибка: вызывающий получает nil и идёт к модели.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ClassificationConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ClassificationConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetClassification возвращает закэшированный результат классификации
// или nil при промахе.
func (r *CacheRepo) GetClassification(ctx context.Context, imageHash string) (*usecase.ClassifyBreedRes, error) {
	val, err := r.client.Client.Get(ctx, r.classificationKey(imageHash)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		r.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ClassificationRedisModel
	if err := json.Unmarshal([]byte(val), &model); err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))

		if err := r.client.Client.Del(context.Background(), r.classificationKey(imageHash)).Err(); err != nil {
			r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}

		return nil, nil // повреждённая запись равносильна промаху
	}

	return r.conv.ToUseCase(&model), nil
}

// SetClassification кэширует модельный результат классификации с TTL.
// Фолбэк-результаты не кэшируются: они синтетические и не должны
// переживать восстановление модели.
func (r *CacheRepo) SetClassification(ctx context.Context, imageHash string, res *usecase.ClassifyBreedRes) error {
	if res.Source != usecase.SourceModel {
		return nil
	}

	data, err := json.Marshal(r.conv.ToRedisModel(res))
	if err != nil {
		r.logger.Warnf("Failed to marshal classification for caching: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil
	}

	if err := r.client.Client.Set(ctx, r.classificationKey(imageHash), data, r.cfg.ClassificationTTL).Err(); err != nil {
		r.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// classificationKey возвращает Redis-ключ результата классификации.
func (r *CacheRepo) classificationKey(imageHash string) string {
	return fmt.Sprintf("classification:%s", imageHash)
}
