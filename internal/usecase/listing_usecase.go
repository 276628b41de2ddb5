package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Максимальная цена листинга — 1 крор (10 млн рупий).
const maxListingPriceRupees = 10_000_000

// ListingUseCase реализует массовый импорт листингов из CSV.
type ListingUseCase struct {
	listingRepo ListingRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	logger      logger.Logger
}

func NewListingUC(
	listingRepo ListingRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	logger logger.Logger,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		logger:      logger,
	}
}

// Import валидирует строки CSV и вставляет валидные листинги одной
// транзакцией вместе с outbox-событием. Невалидные строки пропускаются и
// возвращаются в списке ошибок.
func (l *ListingUseCase) Import(ctx context.Context, req *ImportListingsReq) (*ImportListingsRes, error) {
	const op = "ListingUseCase.Import"

	if len(req.Rows) == 0 {
		return nil, e.Wrap(op, e.ErrNoRows)
	}

	listings := make([]domain.Listing, 0, len(req.Rows))
	var rowErrors []RowError
	for _, row := range req.Rows {
		listing, errs := l.validateRow(row)
		if len(errs) > 0 {
			rowErrors = append(rowErrors, errs...)
			continue
		}

		listings = append(listings, *listing)
	}

	res := &ImportListingsRes{
		Skipped: len(req.Rows) - len(listings),
		Errors:  rowErrors,
	}

	if req.DryRun || len(listings) == 0 {
		return res, nil
	}

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, l.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	inserted, err := l.listingRepo.InsertBatch(ctx, listings)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = l.createImportEvent(ctx, inserted, res.Skipped); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	res.Imported = inserted
	l.logger.Infof("Imported %d listings (%d skipped)", inserted, res.Skipped)
	return res, nil
}

// createImportEvent пишет событие импорта в outbox той же транзакцией,
// что и сами листинги.
func (l *ListingUseCase) createImportEvent(ctx context.Context, imported, skipped int) error {
	if l.outboxRepo == nil {
		return nil
	}

	batchID := uuid.NewString()
	payload, err := json.Marshal(map[string]any{
		"event_type": EventListingsImported,
		"batch_id":   batchID,
		"imported":   imported,
		"skipped":    skipped,
	})
	if err != nil {
		return err
	}

	_, err = l.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), EventListingsImported, batchID, payload))
	return err
}

// validateRow проверяет одну строку CSV и собирает из неё листинг.
func (l *ListingUseCase) validateRow(row ListingRow) (*domain.Listing, []RowError) {
	var errs []RowError
	fail := func(field, message string) {
		errs = append(errs, RowError{Line: row.Line, Field: field, Message: message})
	}

	name := strings.TrimSpace(row.Name)
	breed := strings.TrimSpace(row.Breed)
	location := strings.TrimSpace(row.Location)
	priceRaw := strings.TrimSpace(row.PriceRaw)

	if name == "" {
		fail("name", "required field is empty")
	}
	if breed == "" {
		fail("breed", "required field is empty")
	}
	if location == "" {
		fail("location", "required field is empty")
	}
	if priceRaw == "" {
		fail("price", "required field is empty")
	}

	var price int64
	if priceRaw != "" {
		parsed, err := parsePriceToPaise(priceRaw)
		if err != nil {
			fail("price", err.Error())
		} else {
			price = parsed
		}
	}

	animalType := domain.AnimalTypeUnknown
	if breed != "" {
		animalType = domain.AnimalTypeFor(breed)
		if animalType == domain.AnimalTypeUnknown {
			fail("breed", fmt.Sprintf("unknown breed %q", breed))
		}
	}

	// animal_type в CSV опционален; непустое значение должно согласоваться с породой
	if typeRaw := strings.ToLower(strings.TrimSpace(row.AnimalType)); typeRaw != "" {
		switch typeRaw {
		case "buffalo", "cattle", "cow":
		default:
			fail("animal_type", fmt.Sprintf("invalid animal type %q, use Buffalo or Cattle", row.AnimalType))
		}
	}

	imageURL := strings.TrimSpace(row.ImageURL)
	if imageURL != "" && !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		fail("image_url", "image URL must start with http:// or https://")
	}

	var age *int32
	if ageRaw := strings.TrimSpace(row.AgeRaw); ageRaw != "" {
		parsed, err := strconv.ParseInt(ageRaw, 10, 32)
		if err != nil || parsed < 0 {
			fail("age", fmt.Sprintf("invalid age %q", ageRaw))
		} else {
			v := int32(parsed)
			age = &v
		}
	}

	var yieldAmount *int64
	if yieldRaw := strings.TrimSpace(row.YieldRaw); yieldRaw != "" {
		parsed, err := strconv.ParseInt(yieldRaw, 10, 64)
		if err != nil || parsed < 0 {
			fail("yield_amount", fmt.Sprintf("invalid yield %q", yieldRaw))
		} else {
			yieldAmount = &parsed
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	listing := domain.NewListing(name, breed, animalType, price, location)
	listing.Age = age
	listing.YieldAmount = yieldAmount
	listing.IsVerified = parseBoolish(row.IsVerifiedRaw)
	if seller := strings.TrimSpace(row.SellerName); seller != "" {
		listing.SellerName = &seller
	}
	if imageURL != "" {
		listing.ImageURL = &imageURL
	}

	return listing, nil
}

// parsePriceToPaise конвертирует строку вида "599.99" или "60,000" в пайсы.
func parsePriceToPaise(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("price must be positive: %w", e.ErrInvalidPrice)
	}

	if d.GreaterThan(decimal.NewFromInt(maxListingPriceRupees)) {
		return 0, fmt.Errorf("price seems too high (max 1 crore): %w", e.ErrInvalidPrice)
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

func parseBoolish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "verified":
		return true
	default:
		return false
	}
}
