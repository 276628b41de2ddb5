package usecase

import (
	"context"
	"testing"

	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow(line int) ListingRow {
	return ListingRow{
		Line:          line,
		Name:          "Ganga",
		Breed:         "Murrah",
		AnimalType:    "buffalo",
		PriceRaw:      "85000.50",
		Location:      "Karnal, Haryana",
		AgeRaw:        "4",
		YieldRaw:      "12000",
		SellerName:    "Ravi",
		ImageURL:      "https://example.com/ganga.jpg",
		IsVerifiedRaw: "true",
	}
}

func newListingForTest() *ListingUseCase {
	return NewListingUC(nil, nil, nil, nopLogger{})
}

func TestImportEmptyFile(t *testing.T) {
	uc := newListingForTest()

	_, err := uc.Import(context.Background(), &ImportListingsReq{})
	require.ErrorIs(t, err, e.ErrNoRows)
}

func TestImportDryRunValidRow(t *testing.T) {
	uc := newListingForTest()

	res, err := uc.Import(context.Background(), &ImportListingsReq{
		Rows:   []ListingRow{validRow(2)},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, res.Errors)
}

func TestValidateRowParsesPriceToPaise(t *testing.T) {
	uc := newListingForTest()

	listing, errs := uc.validateRow(validRow(2))
	require.Empty(t, errs)
	assert.Equal(t, int64(8500050), listing.Price)
	assert.Equal(t, "Murrah", listing.Breed)
	require.NotNil(t, listing.Age)
	assert.Equal(t, int32(4), *listing.Age)
	require.NotNil(t, listing.YieldAmount)
	assert.Equal(t, int64(12000), *listing.YieldAmount)
	assert.True(t, listing.IsVerified)
}

func TestValidateRowErrors(t *testing.T) {
	uc := newListingForTest()

	tests := []struct {
		name   string
		mutate func(*ListingRow)
		field  string
	}{
		{"missing name", func(r *ListingRow) { r.Name = "  " }, "name"},
		{"missing price", func(r *ListingRow) { r.PriceRaw = "" }, "price"},
		{"negative price", func(r *ListingRow) { r.PriceRaw = "-500" }, "price"},
		{"price over limit", func(r *ListingRow) { r.PriceRaw = "10000001" }, "price"},
		{"price precision", func(r *ListingRow) { r.PriceRaw = "500.999" }, "price"},
		{"unknown breed", func(r *ListingRow) { r.Breed = "Unicorn" }, "breed"},
		{"bad animal type", func(r *ListingRow) { r.AnimalType = "goat" }, "animal_type"},
		{"bad image url", func(r *ListingRow) { r.ImageURL = "ftp://example.com/a.jpg" }, "image_url"},
		{"bad age", func(r *ListingRow) { r.AgeRaw = "four" }, "age"},
		{"bad yield", func(r *ListingRow) { r.YieldRaw = "-1" }, "yield_amount"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow(3)
			tc.mutate(&row)

			_, errs := uc.validateRow(row)
			require.NotEmpty(t, errs)

			fields := make([]string, 0, len(errs))
			for _, rowErr := range errs {
				assert.Equal(t, 3, rowErr.Line)
				fields = append(fields, rowErr.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestImportDryRunSkipsInvalidRows(t *testing.T) {
	uc := newListingForTest()

	bad := validRow(3)
	bad.Breed = "Unicorn"

	res, err := uc.Import(context.Background(), &ImportListingsReq{
		Rows:   []ListingRow{validRow(2), bad},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "breed", res.Errors[0].Field)
}
