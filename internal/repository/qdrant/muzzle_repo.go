package qdrant

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadMuzzleID     = "muzzle_id"
	payloadListingID    = "listing_id"
	payloadAnimalName   = "animal_name"
	payloadStatus       = "status"
	payloadRegisteredAt = "registered_at"
)

// MuzzleRepo репозиторий реестра биометрии поверх Qdrant.
//
// Записи хранятся точками с полным payload, а Scan возвращает их
// отсортированными по времени регистрации (при равенстве — по muzzle_id):
// Qdrant не сохраняет порядок вставки, а порядок обхода входит в контракт
// репозитория.
type MuzzleRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewMuzzleRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *MuzzleRepo {
	return &MuzzleRepo{
		client: client,
		cfg:    cfg,
	}
}

// Insert сохраняет запись биометрии в коллекцию Qdrant.
func (q *MuzzleRepo) Insert(ctx context.Context, record *domain.MuzzleRecord) error {
	existing, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            []*qdrant.PointId{pointID(record.ID)},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if len(existing) > 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrValidationFailed)
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points: []*qdrant.PointStruct{{
			Id:      pointID(record.ID),
			Vectors: qdrant.NewVectors(record.Features...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadMuzzleID:     record.ID,
				payloadListingID:    record.ListingID,
				payloadAnimalName:   record.AnimalName,
				payloadStatus:       string(record.Status),
				payloadRegisteredAt: record.RegisteredAt.UTC().Format(time.RFC3339Nano),
			}),
		}},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Scan возвращает все записи реестра в порядке регистрации.
func (q *MuzzleRepo) Scan(ctx context.Context) ([]domain.MuzzleRecord, error) {
	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Limit:          qdrant.PtrOf(q.cfg.ScanLimit),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	records := make([]domain.MuzzleRecord, 0, len(points))
	for _, point := range points {
		records = append(records, recordFromPoint(point))
	}
	sortByRegistration(records)

	return records, nil
}

// FindByListing возвращает самую раннюю запись с указанным listing_id.
func (q *MuzzleRepo) FindByListing(ctx context.Context, listingID string) (*domain.MuzzleRecord, error) {
	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Limit:          qdrant.PtrOf(q.cfg.ScanLimit),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadListingID, listingID),
			},
		},
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(points) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrBiometricNotFound)
	}

	records := make([]domain.MuzzleRecord, 0, len(points))
	for _, point := range points {
		records = append(records, recordFromPoint(point))
	}
	sortByRegistration(records)

	return &records[0], nil
}

// Count возвращает точное число записей в коллекции.
func (q *MuzzleRepo) Count(ctx context.Context) (int, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return int(count), nil
}

// pointID детерминированно отображает muzzle_id в UUID точки:
// Qdrant принимает только UUID и числовые идентификаторы.
func pointID(muzzleID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(muzzleID)).String())
}

func recordFromPoint(point *qdrant.RetrievedPoint) domain.MuzzleRecord {
	payload := point.GetPayload()

	registeredAt, _ := time.Parse(time.RFC3339Nano, payload[payloadRegisteredAt].GetStringValue())

	return domain.MuzzleRecord{
		ID:           payload[payloadMuzzleID].GetStringValue(),
		Features:     point.GetVectors().GetVector().GetData(),
		ListingID:    payload[payloadListingID].GetStringValue(),
		AnimalName:   payload[payloadAnimalName].GetStringValue(),
		Status:       domain.MuzzleStatus(payload[payloadStatus].GetStringValue()),
		RegisteredAt: registeredAt,
	}
}

func sortByRegistration(records []domain.MuzzleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RegisteredAt.Equal(records[j].RegisteredAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].RegisteredAt.Before(records[j].RegisteredAt)
	})
}
