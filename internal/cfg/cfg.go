package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/moomingle/go-backend/pkg/e"
	"github.com/moomingle/go-backend/pkg/logger"
)

type Config struct {
	Minio     *MinIOCfg
	Http      *HTTPConfig
	Db        *PGDBCfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Ml        *MLCfg
	Model     *ModelCfg
	Kafka     *KafkaCfg
	Biometric *BiometricCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Название конкретного бакета в Minio
	MinioRootUser     string // Имя пользователя для доступа к Minio
	MinioRootPassword string // Пароль для доступа к Minio
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
	ScanLimit            uint32 // максимум записей на один Scroll
}

type RedisCfg struct {
	Addr              string
	Password          string
	User              string
	DB                int
	MaxRetries        int
	DialTimeout       time.Duration
	Timeout           time.Duration
	ClassificationTTL time.Duration
}

type MLCfg struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxConcurrent  int
	MaxRetries     int
}

type ModelCfg struct {
	PrototypesURL   string
	MetadataURL     string
	DownloadTimeout time.Duration
}

// BiometricCfg задаёт пороги движка биометрии и классификации.
type BiometricCfg struct {
	DuplicateThreshold float64 // близость, выше которой регистрация отклоняется
	MatchThreshold     float64 // минимальная близость для положительной верификации
	EnrollConfidence   float64 // confidence, присваиваемый новой записи
	VerifiedThreshold  float64 // минимальный score для is_verified при классификации
	RegistryBackend    string  // memory | qdrant
}

// Допустимые значения RegistryBackend.
const (
	RegistryBackendMemory = "memory"
	RegistryBackendQdrant = "qdrant"
)

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	biometric, err := loadBiometricCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ml, err := loadMLCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := loadModelCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:     minio,
		Http:      http,
		Db:        db,
		Qdrant:    qdrant,
		Redis:     redis,
		Ml:        ml,
		Model:     model,
		Kafka:     kafka,
		Biometric: biometric,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "768"
		defaultScanLimit      = "10000"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	strScanLimit := getEnvOrDefault("QDRANT_SCAN_LIMIT", defaultScanLimit)
	scanLimit, err := strconv.ParseUint(strScanLimit, 10, 32)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_SCAN_LIMIT")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnv("COLLECTION_NAME"),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
		ScanLimit:            uint32(scanLimit),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr              = "localhost:6379"
		defaultDB                = 0
		defaultMaxRetries        = 3
		defaultDialTimeout       = 5 * time.Second
		defaultReadTimeout       = 3 * time.Second
		defaultWriteTimeout      = 3 * time.Second
		defaultClassificationTTL = 10 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	classificationTTL, err := parseDurationEnv("CLASSIFICATION_TTL", defaultClassificationTTL)
	if err != nil {
		log.Errorf(err, "invalid CLASSIFICATION_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:              addr,
		Password:          password,
		User:              user,
		DB:                db,
		MaxRetries:        maxRetries,
		DialTimeout:       dialTimeout,
		Timeout:           timeout,
		ClassificationTTL: classificationTTL,
	}, nil
}

func loadMLCfg(log logger.Logger) (*MLCfg, error) {
	const (
		defaultBaseURL        = "http://ml-service:8000"
		defaultRequestTimeout = 30 * time.Second
		defaultMaxConcurrent  = 8
		defaultMaxRetries     = 3
	)

	requestTimeout, err := parseDurationEnv("ML_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		log.Errorf(err, "invalid ML_REQUEST_TIMEOUT")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("ML_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid ML_MAX_CONCURRENT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("ML_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid ML_MAX_RETRIES")
		return nil, err
	}

	return &MLCfg{
		BaseURL:        strings.TrimRight(getEnvOrDefault("ML_BASE_URL", defaultBaseURL), "/"),
		RequestTimeout: requestTimeout,
		MaxConcurrent:  maxConcurrent,
		MaxRetries:     maxRetries,
	}, nil
}

func loadModelCfg(log logger.Logger) (*ModelCfg, error) {
	const defaultDownloadTimeout = 60 * time.Second

	downloadTimeout, err := parseDurationEnv("MODEL_DOWNLOAD_TIMEOUT", defaultDownloadTimeout)
	if err != nil {
		log.Errorf(err, "invalid MODEL_DOWNLOAD_TIMEOUT")
		return nil, err
	}

	return &ModelCfg{
		PrototypesURL:   getEnv("MODEL_PROTOTYPES_URL"),
		MetadataURL:     getEnv("MODEL_METADATA_URL"),
		DownloadTimeout: downloadTimeout,
	}, nil
}

func loadBiometricCfg(log logger.Logger) (*BiometricCfg, error) {
	const (
		defaultDuplicateThreshold = "0.95"
		defaultMatchThreshold     = "0.75"
		defaultEnrollConfidence   = "0.95"
		defaultVerifiedThreshold  = "0.8"
		defaultRegistryBackend    = "memory"
	)

	duplicateThreshold, err := parseFloatEnv("DUPLICATE_THRESHOLD", defaultDuplicateThreshold)
	if err != nil {
		log.Errorf(err, "invalid DUPLICATE_THRESHOLD")
		return nil, err
	}

	matchThreshold, err := parseFloatEnv("MATCH_THRESHOLD", defaultMatchThreshold)
	if err != nil {
		log.Errorf(err, "invalid MATCH_THRESHOLD")
		return nil, err
	}

	enrollConfidence, err := parseFloatEnv("ENROLL_CONFIDENCE", defaultEnrollConfidence)
	if err != nil {
		log.Errorf(err, "invalid ENROLL_CONFIDENCE")
		return nil, err
	}

	verifiedThreshold, err := parseFloatEnv("VERIFIED_THRESHOLD", defaultVerifiedThreshold)
	if err != nil {
		log.Errorf(err, "invalid VERIFIED_THRESHOLD")
		return nil, err
	}

	backend := getEnvOrDefault("REGISTRY_BACKEND", defaultRegistryBackend)
	if backend != RegistryBackendMemory && backend != RegistryBackendQdrant {
		err := fmt.Errorf("REGISTRY_BACKEND must be memory or qdrant, got %q", backend)
		log.Errorf(err, "invalid REGISTRY_BACKEND")
		return nil, err
	}

	return &BiometricCfg{
		DuplicateThreshold: duplicateThreshold,
		MatchThreshold:     matchThreshold,
		EnrollConfidence:   enrollConfidence,
		VerifiedThreshold:  verifiedThreshold,
		RegistryBackend:    backend,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key, defaultValue string) (float64, error) {
	v := getEnvOrDefault(key, defaultValue)

	floatValue, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, e.ErrIncorrectEnvVariable
	}

	return floatValue, nil
}
