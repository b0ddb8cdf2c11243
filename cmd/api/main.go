package main

import (
	"context"
	"log/slog"
	"os"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/store"
	"app/internal/logger"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .envはあれば読む（本番は環境変数のみ）
	_ = godotenv.Load()

	logger.New(logger.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// バックエンドは起動時に1回だけ選ぶ。到達できなければファイル版に
	// 切り替えて、そのままプロセス終了まで使い続ける（リクエスト中の
	// 再選択はしない。主従でデータが割れるため）。
	productStore, storageName := selectStore(cfg)

	uploadUC, err := usecase.NewUploadUsecase(cfg.UploadDir, cfg.MaxUploadBytes, cfg.PublicBaseURL)
	if err != nil {
		slog.Error("upload dir setup failed", "err", err)
		os.Exit(1)
	}

	productUC := usecase.NewProductUsecase(productStore)

	//Handler生成
	productH := handler.NewProductHandler(productUC, uploadUC)
	fileH := handler.NewFileHandler(uploadUC, storageName)

	e := server.New(cfg, productH, fileH)

	addr := ":" + cfg.Port
	slog.Info("server starting", "addr", addr, "storage", storageName)
	if err := e.Start(addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// selectStore は設定されたバックエンドを起動時に1回だけ検証して返す。
// 検証に失敗した場合はその旨をログに残し、ファイル版で劣化運転する。
func selectStore(cfg config.Config) (repo.ProductStore, string) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout)
	defer cancel()

	switch cfg.StorageBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		s := store.NewRedisStore(client, cfg.RedisKey, cfg.StorageTimeout)
		if err := s.Ping(ctx); err != nil {
			return degraded(cfg, "redis unreachable", err)
		}
		return s, config.BackendRedis

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return degraded(cfg, "mongo connect failed", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return degraded(cfg, "mongo unreachable", err)
		}
		coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
		return store.NewMongoStore(coll, cfg.StorageTimeout), config.BackendMongo

	case config.BackendPostgres:
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return degraded(cfg, "postgres connect failed", err)
		}
		s := store.NewPostgresStore(gormDB)
		if err := s.Migrate(); err != nil {
			return degraded(cfg, "postgres migrate failed", err)
		}
		return s, config.BackendPostgres

	default:
		return store.NewFileStore(cfg.ProductsFile), config.BackendFile
	}
}

func degraded(cfg config.Config, msg string, err error) (repo.ProductStore, string) {
	slog.Error(msg+", running degraded on file store", "err", err, "path", cfg.ProductsFile)
	return store.NewFileStore(cfg.ProductsFile), config.BackendFile + " (degraded)"
}
