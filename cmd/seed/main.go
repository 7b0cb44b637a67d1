package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"govready/internal/cache"
	"govready/internal/config"
	"govready/internal/engine"
	"govready/internal/logger"
	"govready/internal/repository"
	"govready/internal/service"
)

const defaultCatalogFile = "catalog/ai-governance.yaml"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	path := cfg.CatalogFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = defaultCatalogFile
	}

	catalog, err := repository.LoadCatalogFile(path)
	if err != nil {
		log.Fatal("Failed to load catalog", "file", path, "error", err)
	}
	if issues := engine.ValidateCatalog(catalog); len(issues) > 0 {
		for _, issue := range issues {
			log.Error("catalog issue", "entity", issue.Entity, "id", issue.ID, "problem", issue.Problem)
		}
		log.Fatal("Refusing to seed an invalid catalog", "file", path, "issues", len(issues))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	var catalogCache cache.CatalogCache
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Warn("Redis unavailable, cached catalogs expire on their own", "addr", cfg.RedisAddr, "error", err)
	} else {
		catalogCache = cache.NewCatalogCache(rdb, cfg.Cache.CatalogTTL)
	}

	svc := service.NewCatalogService(repository.NewCatalogRepo(db), catalogCache, log)
	if err := svc.Replace(ctx, catalog); err != nil {
		log.Fatal("Failed to seed catalog", "version", catalog.Version, "error", err)
	}

	log.Info("Catalog seeded",
		"version", catalog.Version,
		"personas", len(catalog.Personas),
		"sections", len(catalog.Sections),
		"questions", len(catalog.Questions))
}
