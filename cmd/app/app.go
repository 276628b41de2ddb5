package main

import (
	"os"

	"github.com/moomingle/go-backend/internal/app"
	config "github.com/moomingle/go-backend/internal/cfg"
	"github.com/moomingle/go-backend/pkg/logger"
)

// @title MooMingle Backend API
// @version 1.0
// @description Сервис классификации пород и биометрической идентификации животных.
// @BasePath /api/v1
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
