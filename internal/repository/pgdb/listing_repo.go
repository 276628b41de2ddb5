package pgdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/internal/repository/pgdb/converter"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/tr"
)

// ListingRepo реализует репозиторий объявлений поверх PostgreSQL.
type ListingRepo struct {
	pool *pgxpool.Pool
	conv converter.ListingConverter
}

func NewListingRepo(pool *pgxpool.Pool, conv converter.ListingConverter) *ListingRepo {
	return &ListingRepo{
		pool: pool,
		conv: conv,
	}
}

// InsertBatch вставляет пакет объявлений в рамках транзакции из контекста.
// Дубликат по (name, breed, location) идемпотентно пропускается, возвращается
// число реально вставленных строк.
func (l *ListingRepo) InsertBatch(ctx context.Context, listings []domain.Listing) (int, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO listings (
			name,
			breed,
			animal_type,
			price,
			location,
			age,
			yield_amount,
			seller_name,
			image_url,
			is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name, breed, location) DO NOTHING;
	`

	inserted := 0
	for i := range listings {
		model := l.conv.ToModel(&listings[i])

		result, err := tx.Exec(ctx, query,
			model.Name,
			model.Breed,
			model.AnimalType,
			model.Price,
			model.Location,
			model.Age,
			model.YieldAmount,
			model.SellerName,
			model.ImageURL,
			model.IsVerified,
		)
		if err != nil {
			return 0, fmt.Errorf("%s: failed to insert listing %q: %w", whereami.WhereAmI(), model.Name, err)
		}

		inserted += int(result.RowsAffected())
	}

	return inserted, nil
}
