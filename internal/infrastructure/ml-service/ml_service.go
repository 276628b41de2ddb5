package ml_service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/jitter"
	"github.com/moomingle/go-backend/pkg/logger"
)

// MLService клиент внешнего ML-сервиса, считающего embedding-векторы
// изображений. Реализует usecase.Embedder.
type MLService struct {
	httpClient    *http.Client
	cfg           *cfg.MLCfg
	maxRetries    int
	maxConcurrent chan struct{}
	logger        logger.Logger
}

type embedRequest struct {
	ImageData string `json:"image_data"`
	MimeType  string `json:"mime_type,omitempty"`
}

type embedResponse struct {
	Embedding    []float32 `json:"embedding"`
	ModelVersion string    `json:"model_version"`
}

func NewMLService(cfg *cfg.MLCfg, logger logger.Logger) *MLService {
	return &MLService{
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		cfg:           cfg,
		maxRetries:    cfg.MaxRetries,
		maxConcurrent: make(chan struct{}, cfg.MaxConcurrent),
		logger:        logger,
	}
}

// Embed выполняет векторизацию изображения с retry-логикой и
// экспоненциальной задержкой между попытками.
func (m *MLService) Embed(ctx context.Context, image []byte) ([]float32, error) {
	const (
		op         = "MLService.Embed"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		vector, err := m.embedOnce(ctx, image)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if attempt == m.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		m.logger.Warnf("embedding failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", m.maxRetries, lastErr))
}

// Ping проверяет доступность ML-сервиса. Используется при старте для выбора
// варианта embedder'а.
func (m *MLService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.BaseURL+"/health", nil)
	if err != nil {
		return e.Wrap("MLService.Ping", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return e.Wrap("MLService.Ping", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.Wrap("MLService.Ping", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return nil
}

// embedOnce отправляет одно изображение на векторизацию. Число одновременных
// запросов к сервису ограничено, чтобы не перегружать GPU-инстанс.
func (m *MLService) embedOnce(ctx context.Context, image []byte) ([]float32, error) {
	const op = "MLService.embedOnce"

	select {
	case m.maxConcurrent <- struct{}{}:
		defer func() { <-m.maxConcurrent }()
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}

	body, err := json.Marshal(embedRequest{
		ImageData: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, e.Wrap(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(parsed.Embedding) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	return parsed.Embedding, nil
}
