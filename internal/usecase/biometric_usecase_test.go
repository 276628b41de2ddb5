package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/internal/repository/memory"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// stubEmbedder отдаёт заранее заданные векторы по содержимому изображения.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, image []byte) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[string(image)], nil
}

// stubImagesInfra записывает загруженные и удалённые ключи снимков.
type stubImagesInfra struct {
	mu      sync.Mutex
	stored  []string
	cleaned []string
}

func (s *stubImagesInfra) StoreMuzzleImage(_ context.Context, req *StoreMuzzleImageReq) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/img-%d.jpg", req.ListingID, len(s.stored)+1)
	s.stored = append(s.stored, key)
	return key, nil
}

func (s *stubImagesInfra) CleanupImages(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaned = append(s.cleaned, keys...)
}

func img(name string) AnimalImage {
	return AnimalImage{Data: []byte(name), MimeType: "image/jpeg", Size: int64(len(name)), Name: name + ".jpg"}
}

func newBiometricForTest(embedder Embedder) (*BiometricUseCase, *memory.MuzzleRepo) {
	repo := memory.NewMuzzleRepo()
	uc := NewBiometricUC(repo, embedder, nil, nil, nopLogger{}, 0.95, 0.75, 0.95)
	return uc, repo
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newBiometricForTest(&stubEmbedder{})
	ctx := context.Background()

	_, err := uc.Register(ctx, NewRegisterMuzzleReq(AnimalImage{}, "L1", "Ganga"))
	require.ErrorIs(t, err, e.ErrMissingImage)

	_, err = uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "  ", "Ganga"))
	require.ErrorIs(t, err, e.ErrMissingListingID)
}

func TestRegisterEmbedderUnavailable(t *testing.T) {
	uc, _ := newBiometricForTest(&stubEmbedder{err: fmt.Errorf("model down")})

	_, err := uc.Register(context.Background(), NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.ErrorIs(t, err, e.ErrEmbedderUnavailable)
}

func TestRegisterThenVerifySameEmbedding(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0, 0},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	res, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	require.True(t, res.Registered)
	assert.Regexp(t, `^MZL-[0-9A-F]{12}$`, res.MuzzleID)
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, domain.MuzzleStatusVerified, res.Status)

	verify, err := uc.Verify(ctx, NewVerifyMuzzleReq(img("e1"), nil))
	require.NoError(t, err)
	require.True(t, verify.Matched)
	assert.Equal(t, res.MuzzleID, verify.MuzzleID)
	assert.Equal(t, "L1", verify.ListingID)
	assert.Equal(t, "Ganga", verify.AnimalName)
	assert.Equal(t, 1.0, verify.Confidence)
	assert.True(t, verify.IsExpectedMatch)
}

func TestVerifyExpectedListingConstraint(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0, 0},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	_, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)

	expected := "L1"
	verify, err := uc.Verify(ctx, NewVerifyMuzzleReq(img("e1"), &expected))
	require.NoError(t, err)
	assert.True(t, verify.IsExpectedMatch)

	other := "L2"
	verify, err = uc.Verify(ctx, NewVerifyMuzzleReq(img("e1"), &other))
	require.NoError(t, err)
	require.True(t, verify.Matched)
	assert.False(t, verify.IsExpectedMatch)
}

func TestRegisterExactDuplicateRejected(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {0.5, 0.5, 0.1},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	first, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	require.True(t, first.Registered)

	second, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L2", "Yamuna"))
	require.NoError(t, err)
	require.False(t, second.Registered)
	require.NotNil(t, second.Duplicate)
	assert.Equal(t, first.MuzzleID, second.Duplicate.ExistingMuzzleID)
	assert.InDelta(t, 1.0, second.Duplicate.Similarity, 1e-4)
}

func TestRegisterStoresImageAndCleansUpOnDuplicate(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0, 0},
	}}
	infra := &stubImagesInfra{}
	uc := NewBiometricUC(memory.NewMuzzleRepo(), embedder, infra, nil, nopLogger{}, 0.95, 0.75, 0.95)
	ctx := context.Background()

	first, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	require.True(t, first.Registered)
	require.Len(t, infra.stored, 1)
	assert.Empty(t, infra.cleaned, "снимок состоявшейся регистрации должен остаться")

	second, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L2", "Yamuna"))
	require.NoError(t, err)
	require.NotNil(t, second.Duplicate)
	require.Len(t, infra.stored, 2)
	assert.Equal(t, []string{infra.stored[1]}, infra.cleaned)
}

// failingInsertRepo имитирует отказ хранилища на вставке.
type failingInsertRepo struct {
	*memory.MuzzleRepo
}

func (f *failingInsertRepo) Insert(context.Context, *domain.MuzzleRecord) error {
	return fmt.Errorf("insert failed")
}

func TestRegisterCleansUpImageOnInsertFailure(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0, 0},
	}}
	infra := &stubImagesInfra{}
	repo := &failingInsertRepo{MuzzleRepo: memory.NewMuzzleRepo()}
	uc := NewBiometricUC(repo, embedder, infra, nil, nopLogger{}, 0.95, 0.75, 0.95)

	_, err := uc.Register(context.Background(), NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.Error(t, err)
	require.Len(t, infra.stored, 1)
	assert.Equal(t, infra.stored, infra.cleaned)
}

func TestRegisterDistinctAnimalsBothSucceed(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0},
		"e2": {0, 1},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	first, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	require.True(t, first.Registered)

	second, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e2"), "L2", "Yamuna"))
	require.NoError(t, err)
	require.True(t, second.Registered)

	assert.NotEqual(t, first.MuzzleID, second.MuzzleID)
}

func TestVerifyEmptyRegistry(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0},
	}}
	uc, _ := newBiometricForTest(embedder)

	res, err := uc.Verify(context.Background(), NewVerifyMuzzleReq(img("e1"), nil))
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, 0.0, res.BestSimilarity)
}

// Сценарий целиком: регистрация, отклонение дубликата с близостью 0.97,
// положительная верификация с близостью 0.80.
func TestRegistrationScenarioEndToEnd(t *testing.T) {
	e2y := float32(math.Sqrt(1 - 0.97*0.97))
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0},
		"e2": {0.97, e2y},
		"e3": {0.8, -0.6},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	first, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	require.True(t, first.Registered)

	dup, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e2"), "L2", "Yamuna"))
	require.NoError(t, err)
	require.False(t, dup.Registered)
	require.NotNil(t, dup.Duplicate)
	assert.Equal(t, first.MuzzleID, dup.Duplicate.ExistingMuzzleID)
	assert.InDelta(t, 0.97, dup.Duplicate.Similarity, 1e-3)

	verify, err := uc.Verify(ctx, NewVerifyMuzzleReq(img("e3"), nil))
	require.NoError(t, err)
	require.True(t, verify.Matched)
	assert.Equal(t, first.MuzzleID, verify.MuzzleID)
	assert.InDelta(t, 0.80, verify.Confidence, 1e-3)
	assert.True(t, verify.IsExpectedMatch)
}

// При равных максимумах верификация возвращает первую вставленную запись.
func TestVerifyTieKeepsFirstInserted(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc, repo := newBiometricForTest(embedder)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", []float32{1, 0}, "L1", "Ganga")))
	require.NoError(t, repo.Insert(ctx, domain.NewMuzzleRecord("MZL-BBBBBBBBBBBB", []float32{1, 0}, "L2", "Yamuna")))

	res, err := uc.Verify(ctx, NewVerifyMuzzleReq(img("probe"), nil))
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, "MZL-AAAAAAAAAAAA", res.MuzzleID)
}

func TestVerifyDimensionMismatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc, repo := newBiometricForTest(embedder)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, domain.NewMuzzleRecord("MZL-AAAAAAAAAAAA", []float32{1, 0, 0}, "L1", "Ganga")))

	_, err := uc.Verify(ctx, NewVerifyMuzzleReq(img("probe"), nil))
	require.ErrorIs(t, err, e.ErrDimensionMismatch)
}

// Гонка регистраций одного животного: выигрывает ровно одна.
func TestConcurrentRegistrationsSingleWinner(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {0.3, 0.7, 0.2},
	}}
	uc, _ := newBiometricForTest(embedder)

	const workers = 16
	results := make([]*RegisterMuzzleRes, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.Register(context.Background(), NewRegisterMuzzleReq(img("e1"), fmt.Sprintf("L%d", i), "Ganga"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}

	var registered, duplicates int
	var winnerID string
	for _, res := range results {
		if res.Registered {
			registered++
			winnerID = res.MuzzleID
		} else {
			duplicates++
		}
	}

	assert.Equal(t, 1, registered)
	assert.Equal(t, workers-1, duplicates)

	for _, res := range results {
		if !res.Registered {
			assert.Equal(t, winnerID, res.Duplicate.ExistingMuzzleID)
		}
	}
}

func TestStatusFor(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	_, err := uc.StatusFor(ctx, "")
	require.ErrorIs(t, err, e.ErrMissingListingID)

	_, err = uc.StatusFor(ctx, "L1")
	require.ErrorIs(t, err, e.ErrBiometricNotFound)

	res, err := uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)

	status, err := uc.StatusFor(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, res.MuzzleID, status.MuzzleID)
	assert.Equal(t, domain.MuzzleStatusVerified, status.Status)
	assert.Equal(t, "Ganga", status.AnimalName)
	assert.Equal(t, 0.95, status.Confidence)
	assert.False(t, status.RegisteredAt.IsZero())
}

func TestStats(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"e1": {1, 0},
		"e2": {0, 1},
	}}
	uc, _ := newBiometricForTest(embedder)
	ctx := context.Background()

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRegistered)

	_, err = uc.Register(ctx, NewRegisterMuzzleReq(img("e1"), "L1", "Ganga"))
	require.NoError(t, err)
	_, err = uc.Register(ctx, NewRegisterMuzzleReq(img("e2"), "L2", "Yamuna"))
	require.NoError(t, err)

	stats, err = uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRegistered)
}
