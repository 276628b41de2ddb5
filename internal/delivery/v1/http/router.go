package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/moomingle/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(breedUC usecase.BreedUC, biometricUC usecase.BiometricUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Get("/health", healthCheck)
	r.router.Handle("/metrics", promhttp.Handler())

	r.router.Route("/api/v1", func(v1 chi.Router) {
		breedHandler := NewBreedHandler(breedUC, r.logger)
		registerBreedRoutes(v1, breedHandler)

		muzzleHandler := NewMuzzleHandler(biometricUC, r.logger)
		registerMuzzleRoutes(v1, muzzleHandler)
	})
}

func registerBreedRoutes(router chi.Router, breedHandler *BreedHandler) {
	router.Post("/predict", breedHandler.predict)
	router.Get("/breeds", breedHandler.listBreeds)
}

func registerMuzzleRoutes(router chi.Router, muzzleHandler *MuzzleHandler) {
	router.Route("/muzzle", func(mz chi.Router) {
		mz.Post("/register", muzzleHandler.register)
		mz.Post("/verify", muzzleHandler.verify)
		mz.Get("/status/{listing_id}", muzzleHandler.status)
		mz.Get("/stats", muzzleHandler.stats)
	})
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}
