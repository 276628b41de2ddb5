package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndScanPreserveOrder(t *testing.T) {
	repo := NewMuzzleRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := domain.NewMuzzleRecord(
			fmt.Sprintf("MZL-%012d", i),
			[]float32{float32(i), 1},
			fmt.Sprintf("L%d", i),
			"Ganga",
		)
		require.NoError(t, repo.Insert(ctx, rec))
	}

	records, err := repo.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("MZL-%012d", i), rec.ID)
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	repo := NewMuzzleRepo()
	ctx := context.Background()

	rec := domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", []float32{1, 0}, "L1", "Ganga")
	require.NoError(t, repo.Insert(ctx, rec))
	require.Error(t, repo.Insert(ctx, rec))
}

func TestInsertCopiesFeatures(t *testing.T) {
	repo := NewMuzzleRepo()
	ctx := context.Background()

	features := []float32{1, 2, 3}
	rec := domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", features, "L1", "Ganga")
	require.NoError(t, repo.Insert(ctx, rec))

	// Мутация исходного среза не должна затронуть реестр
	features[0] = 99

	records, err := repo.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(1), records[0].Features[0])
}

func TestFindByListingReturnsFirstInserted(t *testing.T) {
	repo := NewMuzzleRepo()
	ctx := context.Background()

	first := domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", []float32{1, 0}, "L1", "Ganga")
	second := domain.NewMuzzleRecord("MZL-BBBBBBBBBBBB", []float32{0, 1}, "L1", "Yamuna")
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	found, err := repo.FindByListing(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, "MZL-AAAAAAAAAAAA", found.ID)
}

func TestFindByListingNotFound(t *testing.T) {
	repo := NewMuzzleRepo()

	_, err := repo.FindByListing(context.Background(), "missing")
	require.ErrorIs(t, err, e.ErrBiometricNotFound)
}

func TestCount(t *testing.T) {
	repo := NewMuzzleRepo()
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.Insert(ctx, domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", []float32{1}, "L1", "Ganga")))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
