package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ストレージバックエンドの種別
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（3000）

	StorageBackend string        // file / redis / mongo / postgres
	StorageTimeout time.Duration // リモートストアのI/O上限

	ProductsFile string // file版のJSONパス
	UploadDir    string // 画像の保存先

	MaxUploadBytes int64  // アップロード上限（バイト）
	PublicBaseURL  string // 公開URL。空ならリクエストから導出
	FEURL          string // フロントURL（CORS許可リスト、カンマ区切り）

	RedisAddr     string
	RedisPassword string
	RedisKey      string // コレクションを持つ単一キー

	MongoURI        string
	MongoDB         string
	MongoCollection string

	PostgresDSN      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	maxMB, err := envInt64("MAX_UPLOAD_MB", 5)
	if err != nil {
		return Config{}, err
	}
	timeoutSec, err := envInt64("STORAGE_TIMEOUT_SECONDS", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "3000"),

		StorageBackend: getenv("STORAGE_BACKEND", BackendFile),
		StorageTimeout: time.Duration(timeoutSec) * time.Second,

		ProductsFile: getenv("PRODUCTS_FILE", "products.json"),
		UploadDir:    getenv("UPLOAD_DIR", "uploads"),

		MaxUploadBytes: maxMB * 1024 * 1024,
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		FEURL:          os.Getenv("FE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisKey:      getenv("REDIS_PRODUCTS_KEY", "products"),

		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getenv("MONGO_DB", "app"),
		MongoCollection: getenv("MONGO_COLLECTION", "products"),

		PostgresDSN:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	switch cfg.StorageBackend {
	case BackendFile, BackendRedis, BackendMongo, BackendPostgres:
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be one of file/redis/mongo/postgres, got %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == BackendRedis && cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
	}
	if cfg.StorageBackend == BackendMongo && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_BACKEND=mongo")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
