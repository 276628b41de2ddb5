package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	first, err := e.Embed(ctx, []byte("muzzle photo"))
	require.NoError(t, err)
	second, err := e.Embed(ctx, []byte("muzzle photo"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashEmbedderShape(t *testing.T) {
	e := NewHashEmbedder()

	vector, err := e.Embed(context.Background(), []byte("muzzle photo"))
	require.NoError(t, err)
	require.Len(t, vector, HashDimension)

	for _, component := range vector {
		assert.GreaterOrEqual(t, component, float32(0))
		assert.LessOrEqual(t, component, float32(1))
	}
}

func TestHashEmbedderDistinguishesInputs(t *testing.T) {
	e := NewHashEmbedder()
	ctx := context.Background()

	first, err := e.Embed(ctx, []byte("animal one"))
	require.NoError(t, err)
	second, err := e.Embed(ctx, []byte("animal two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
