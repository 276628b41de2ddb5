package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrototypes struct {
	set *domain.PrototypeSet
	err error
}

func (s *stubPrototypes) Prototypes() (*domain.PrototypeSet, error) {
	return s.set, s.err
}

// fakeCache запоминает записанные классификации в памяти.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*ClassifyBreedRes
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*ClassifyBreedRes)}
}

func (f *fakeCache) GetClassification(_ context.Context, imageHash string) (*ClassifyBreedRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[imageHash], nil
}

func (f *fakeCache) SetClassification(_ context.Context, imageHash string, res *ClassifyBreedRes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[imageHash] = res
	return nil
}

func mustPrototypeSet(t *testing.T, prototypes []domain.Prototype) *domain.PrototypeSet {
	t.Helper()
	set, err := domain.NewPrototypeSet(prototypes)
	require.NoError(t, err)
	return set
}

func newBreedForTest(provider PrototypeProvider, embedder Embedder, cache CacheRepository) *BreedUseCase {
	return NewBreedUC(provider, embedder, cache, 0.8, nopLogger{})
}

func TestClassifyNearestPrototype(t *testing.T) {
	// cos(probe, Murrah) = 0.4 -> score 0.70; cos(probe, Gir) = -0.1 -> 0.45.
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Murrah", Vector: []float32{0.4, float32(math.Sqrt(0.84))}},
		{Breed: "Gir", Vector: []float32{-0.1, float32(math.Sqrt(0.99))}},
	})
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)

	assert.Equal(t, "Murrah", res.Breed)
	assert.Equal(t, domain.AnimalTypeBuffalo, res.AnimalType)
	assert.Equal(t, SourceModel, res.Source)
	assert.InDelta(t, 0.70, res.Confidence, 1e-4)
	assert.False(t, res.IsVerified)

	require.Len(t, res.AllScores, 2)
	assert.Equal(t, "Murrah", res.AllScores[0].Breed)
	assert.InDelta(t, 0.70, res.AllScores[0].Score, 1e-4)
	assert.Equal(t, "Gir", res.AllScores[1].Breed)
	assert.InDelta(t, 0.45, res.AllScores[1].Score, 1e-4)
}

func TestClassifyVerifiedAboveThreshold(t *testing.T) {
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Sahiwal", Vector: []float32{1, 0}},
		{Breed: "Murrah", Vector: []float32{0, 1}},
	})
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)

	assert.Equal(t, "Sahiwal", res.Breed)
	assert.Equal(t, domain.AnimalTypeCattle, res.AnimalType)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.IsVerified)
}

// При одинаковых score побеждает порода, загруженная первой.
func TestClassifyTieKeepsLoadOrder(t *testing.T) {
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Nili-Ravi", Vector: []float32{0, 1}},
		{Breed: "Jaffarbadi", Vector: []float32{0, 1}},
	})
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {0, 1},
	}}
	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)

	assert.Equal(t, "Nili-Ravi", res.Breed)
	require.Len(t, res.AllScores, 2)
	assert.Equal(t, "Nili-Ravi", res.AllScores[0].Breed)
	assert.Equal(t, "Jaffarbadi", res.AllScores[1].Breed)
}

func TestClassifyReportsTopFiveOnly(t *testing.T) {
	breeds := []string{"Murrah", "Gir", "Sahiwal", "Kankrej", "Tharparkar", "Red Sindhi", "Hariana"}
	prototypes := make([]domain.Prototype, 0, len(breeds))
	for i, breed := range breeds {
		// Углы растут, близость к [1, 0] монотонно падает.
		angle := float64(i+1) * 0.2
		prototypes = append(prototypes, domain.Prototype{
			Breed:  breed,
			Vector: []float32{float32(math.Cos(angle)), float32(math.Sin(angle))},
		})
	}
	set := mustPrototypeSet(t, prototypes)
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)

	require.Len(t, res.AllScores, 5)
	for i := 1; i < len(res.AllScores); i++ {
		assert.GreaterOrEqual(t, res.AllScores[i-1].Score, res.AllScores[i].Score)
	}
	assert.Equal(t, "Murrah", res.AllScores[0].Breed)
}

func TestClassifyMissingImage(t *testing.T) {
	uc := newBreedForTest(&stubPrototypes{err: e.ErrNoPrototypes}, &stubEmbedder{}, nil)

	_, err := uc.Classify(context.Background(), NewClassifyBreedReq(AnimalImage{}))
	require.ErrorIs(t, err, e.ErrMissingImage)
}

func assertFallback(t *testing.T, res *ClassifyBreedRes) {
	t.Helper()

	assert.Equal(t, SourceFallback, res.Source)
	assert.Contains(t, domain.FallbackBreeds, res.Breed)
	assert.GreaterOrEqual(t, res.Confidence, 0.75)
	assert.Less(t, res.Confidence, 0.90)
	assert.False(t, res.IsVerified)
	require.Len(t, res.AllScores, 1)
	assert.Equal(t, res.Breed, res.AllScores[0].Breed)
	assert.Equal(t, 0.85, res.AllScores[0].Score)
}

func TestClassifyFallbackWhenNoPrototypes(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc := newBreedForTest(&stubPrototypes{err: e.ErrNoPrototypes}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)
	assertFallback(t, res)
}

func TestClassifyFallbackWhenEmbedderFails(t *testing.T) {
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Murrah", Vector: []float32{1, 0}},
	})
	uc := newBreedForTest(&stubPrototypes{set: set}, &stubEmbedder{err: fmt.Errorf("ml service down")}, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)
	assertFallback(t, res)
}

func TestClassifyFallbackOnDimensionMismatch(t *testing.T) {
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Murrah", Vector: []float32{1, 0, 0}},
	})
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, nil)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)
	assertFallback(t, res)
}

func TestClassifyCacheHitSkipsModel(t *testing.T) {
	set := mustPrototypeSet(t, []domain.Prototype{
		{Breed: "Murrah", Vector: []float32{1, 0}},
	})
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"probe": {1, 0},
	}}
	cache := newFakeCache()
	cached := &ClassifyBreedRes{Breed: "Gir", Confidence: 0.99, Source: SourceModel}
	cache.entries[hashImage([]byte("probe"))] = cached

	uc := newBreedForTest(&stubPrototypes{set: set}, embedder, cache)

	res, err := uc.Classify(context.Background(), NewClassifyBreedReq(img("probe")))
	require.NoError(t, err)
	assert.Same(t, cached, res)
}

func TestBreeds(t *testing.T) {
	uc := newBreedForTest(&stubPrototypes{}, &stubEmbedder{}, nil)

	res := uc.Breeds()
	assert.Len(t, res.Buffalo, 10)
	assert.Len(t, res.Cattle, 40)
	assert.Equal(t, 50, res.Total)
}
