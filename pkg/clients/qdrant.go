package clients

import (
	"context"

	"github.com/jimlawless/whereami"
	config "github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantClient оборачивает gRPC-клиент Qdrant и конфигурацию коллекции
// реестра биометрии.
type QdrantClient struct {
	Client *qdrant.Client
	cfg    *config.QdrantCfg
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{Client: client, cfg: cfg}, nil
}

// EnsureCollection создаёт коллекцию реестра, если её нет. Косинусная
// метрика соответствует близости, по которой реестр ищет дубликаты.
func EnsureCollection(ctx context.Context, client *QdrantClient) error {
	exists, err := client.Client.CollectionExists(ctx, client.cfg.QdrantCollectionName)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if exists {
		return nil
	}

	err = client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: client.cfg.QdrantCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     client.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
