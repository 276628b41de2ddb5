package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/internal/domain"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Loader загружает артефакты модели классификации при старте приложения и
// отдаёт набор прототипов. Реализует usecase.PrototypeProvider.
//
// Неудачная загрузка не фатальна: Prototypes() возвращает e.ErrNoPrototypes,
// и классификатор деградирует в фолбэк, пока артефакт недоступен.
type Loader struct {
	httpClient *http.Client
	cfg        *cfg.ModelCfg
	logger     logger.Logger

	mu       sync.RWMutex
	set      *domain.PrototypeSet
	metadata *Metadata
}

// Metadata описывает версию и происхождение загруженной модели.
type Metadata struct {
	Version   string `json:"version"`
	Dimension int    `json:"dimension"`
	TrainedAt string `json:"trained_at"`
}

// prototypeArtifact — формат артефакта прототипов. Порядок элементов значим:
// он фиксирует порядок разрешения ничьих при классификации.
type prototypeArtifact struct {
	Prototypes []struct {
		Breed  string    `json:"breed"`
		Vector []float32 `json:"vector"`
	} `json:"prototypes"`
}

func NewLoader(cfg *cfg.ModelCfg, logger logger.Logger) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Load скачивает прототипы и метаданные модели параллельно. Ошибка любой из
// загрузок отменяет вторую.
func (l *Loader) Load(ctx context.Context) error {
	const op = "Loader.Load"

	var (
		artifact prototypeArtifact
		metadata Metadata
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.fetchJSON(gCtx, l.cfg.PrototypesURL, &artifact)
	})
	g.Go(func() error {
		return l.fetchJSON(gCtx, l.cfg.MetadataURL, &metadata)
	})

	if err := g.Wait(); err != nil {
		return e.Wrap(op, err)
	}

	prototypes := make([]domain.Prototype, 0, len(artifact.Prototypes))
	for _, p := range artifact.Prototypes {
		prototypes = append(prototypes, domain.Prototype{Breed: p.Breed, Vector: p.Vector})
	}

	set, err := domain.NewPrototypeSet(prototypes)
	if err != nil {
		return e.Wrap(op, err)
	}

	l.mu.Lock()
	l.set = set
	l.metadata = &metadata
	l.mu.Unlock()

	l.logger.Infof("Loaded model %s: %d prototypes, dimension %d", metadata.Version, set.Len(), set.Dimension())
	return nil
}

// Prototypes возвращает загруженный набор прототипов или e.ErrNoPrototypes.
func (l *Loader) Prototypes() (*domain.PrototypeSet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.set == nil {
		return nil, e.ErrNoPrototypes
	}

	return l.set, nil
}

// Metadata возвращает метаданные загруженной модели или nil.
func (l *Loader) Metadata() *Metadata {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.metadata
}

func (l *Loader) fetchJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch %s: unexpected status %d: %s", url, resp.StatusCode, data)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}

	return nil
}
