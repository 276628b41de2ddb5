package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/moomingle/go-backend/internal/cfg"
	v1Http "github.com/moomingle/go-backend/internal/delivery/v1/http"
	"github.com/moomingle/go-backend/internal/infrastructure/embedder"
	"github.com/moomingle/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/moomingle/go-backend/internal/infrastructure/minio"
	ml_service "github.com/moomingle/go-backend/internal/infrastructure/ml-service"
	"github.com/moomingle/go-backend/internal/infrastructure/model"
	memoryRepo "github.com/moomingle/go-backend/internal/repository/memory"
	s3Repo "github.com/moomingle/go-backend/internal/repository/minio"
	"github.com/moomingle/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/moomingle/go-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/moomingle/go-backend/internal/repository/qdrant"
	"github.com/moomingle/go-backend/internal/repository/redis"
	redisConv "github.com/moomingle/go-backend/internal/repository/redis/converter"
	"github.com/moomingle/go-backend/internal/usecase"
	"github.com/moomingle/go-backend/pkg/clients"
	"github.com/moomingle/go-backend/pkg/closer"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
	"github.com/moomingle/go-backend/pkg/postgres"
)

// App держит собранный граф зависимостей, готовый к запуску.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	worker      *kafka.OutboxWorker
	imagesInfra *minioInfra.MinioInfrastructure
	resources   *closer.Closer

	httpSrv *v1Http.Server
	router  *chi.Mux

	cleanupCancel context.CancelFunc
}

// NewApp собирает все зависимости: базу, хранилища, клиентов и usecase-слой.
// Недоступность ML-сервиса и артефакта модели не фатальна: приложение
// стартует с хэш-эмбеддером и фолбэк-классификацией.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Ресурсы закрываются в порядке LIFO: база последней.
	resources := closer.NewCloser(0)
	resources.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	outboxConv := pgdbConv.NewOutboxEventConverter()
	classConv := redisConv.NewClassificationConverter()

	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		minioCancel()
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, cleanupCtx)

	var (
		muzzleRepo   usecase.MuzzleRepository
		qdrantClient *clients.QdrantClient
	)
	switch cfg.Biometric.RegistryBackend {
	case config.RegistryBackendQdrant:
		qdrantClient, err = clients.NewQdrantClient(cfg.Qdrant)
		if err != nil {
			cleanupCancel()
			log.Errorf(err, "failed to initialize qdrant")
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
			qdrantCancel()
			cleanupCancel()
			log.Errorf(err, "failed to initialize qdrant collection")
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		qdrantCancel()
		resources.Add(func(ctx context.Context) error {
			return qdrantClient.Client.Close()
		})
		muzzleRepo = qdrantRepo.NewMuzzleRepo(qdrantClient.Client, cfg.Qdrant)
	default:
		muzzleRepo = memoryRepo.NewMuzzleRepo()
	}
	log.Infof("biometric registry backend: %s", cfg.Biometric.RegistryBackend)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		cleanupCancel()
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	redisCancel()
	resources.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, classConv, cfg.Redis, log)

	emb := pickEmbedder(cfg, log)

	loader := model.NewLoader(cfg.Model, log)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Model.DownloadTimeout)
	if err := loader.Load(loadCtx); err != nil {
		log.Warnf("model artifacts unavailable, classification degrades to fallback: %v", err)
	}
	loadCancel()

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		cleanupCancel()
		log.Errorf(err, "failed to initialize kafka producer")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		log.Warnf("failed to ensure kafka topic, relying on auto-create: %v", err)
	}
	resources.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	worker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	breedUC := usecase.NewBreedUC(
		loader,
		emb,
		cacheRepo,
		cfg.Biometric.VerifiedThreshold,
		log,
	)

	biometricUC := usecase.NewBiometricUC(
		muzzleRepo,
		emb,
		imagesInfra,
		producer,
		log,
		cfg.Biometric.DuplicateThreshold,
		cfg.Biometric.MatchThreshold,
		cfg.Biometric.EnrollConfidence,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(breedUC, biometricUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:           cfg,
		logger:        log,
		worker:        worker,
		imagesInfra:   imagesInfra,
		resources:     resources,
		httpSrv:       httpSrv,
		router:        r,
		cleanupCancel: cleanupCancel,
	}, nil
}

// Run запускает HTTP-сервер и outbox-воркер и блокируется до сигнала
// завершения или фатальной ошибки сервера.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	a.worker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	workerCancel()
	a.worker.Stop()
	a.logger.Infof("outbox worker stopped")

	done := make(chan error, 1)
	go func() {
		done <- a.imagesInfra.WaitForCleanup(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			a.logger.Warnf("MinIO cleanup error: %v", err)
		} else {
			a.logger.Infof("MinIO cleanup completed")
		}
	case <-time.After(5 * time.Second): // локальный таймаут ожидания cleanup
		a.logger.Warnf("MinIO cleanup did not finish before shutdown, some temporary objects may remain")
	}
	a.cleanupCancel()

	if err := a.resources.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// pickEmbedder выбирает источник векторов один раз при старте: внешний
// ML-сервис, если он отвечает на health-check, иначе локальный хэш-эмбеддер.
func pickEmbedder(cfg *config.Config, log logger.Logger) usecase.Embedder {
	ml := ml_service.NewMLService(cfg.Ml, log)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := ml.Ping(pingCtx); err != nil {
		log.Warnf("ML service unreachable, using hash embedder: %v", err)
		return embedder.NewHashEmbedder()
	}

	log.Infof("using ML service embedder at %s", cfg.Ml.BaseURL)
	return ml
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
