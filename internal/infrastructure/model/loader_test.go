package model

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func newArtifactServer(t *testing.T, prototypesBody, metadataBody string, status int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/prototypes.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(prototypesBody))
	})
	mux.HandleFunc("/metadata.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(metadataBody))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func loaderFor(server *httptest.Server) *Loader {
	return NewLoader(&cfg.ModelCfg{
		PrototypesURL:   server.URL + "/prototypes.json",
		MetadataURL:     server.URL + "/metadata.json",
		DownloadTimeout: 5 * time.Second,
	}, nopLogger{})
}

func TestLoaderLoadsPrototypesInOrder(t *testing.T) {
	server := newArtifactServer(t,
		`{"prototypes": [
			{"breed": "Murrah", "vector": [1, 0]},
			{"breed": "Gir", "vector": [0, 1]}
		]}`,
		`{"version": "v3", "dimension": 2, "trained_at": "2026-05-01"}`,
		http.StatusOK,
	)
	loader := loaderFor(server)

	require.NoError(t, loader.Load(context.Background()))

	set, err := loader.Prototypes()
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 2, set.Dimension())

	prototypes := set.All()
	assert.Equal(t, "Murrah", prototypes[0].Breed)
	assert.Equal(t, "Gir", prototypes[1].Breed)

	require.NotNil(t, loader.Metadata())
	assert.Equal(t, "v3", loader.Metadata().Version)
}

func TestLoaderBeforeLoad(t *testing.T) {
	server := newArtifactServer(t, `{}`, `{}`, http.StatusOK)
	loader := loaderFor(server)

	_, err := loader.Prototypes()
	require.ErrorIs(t, err, e.ErrNoPrototypes)
}

func TestLoaderServerError(t *testing.T) {
	server := newArtifactServer(t, `oops`, `oops`, http.StatusInternalServerError)
	loader := loaderFor(server)

	require.Error(t, loader.Load(context.Background()))

	_, err := loader.Prototypes()
	require.ErrorIs(t, err, e.ErrNoPrototypes)
}

func TestLoaderRejectsEmptyArtifact(t *testing.T) {
	server := newArtifactServer(t, `{"prototypes": []}`, `{"version": "v3"}`, http.StatusOK)
	loader := loaderFor(server)

	err := loader.Load(context.Background())
	require.ErrorIs(t, err, e.ErrNoPrototypes)
}
