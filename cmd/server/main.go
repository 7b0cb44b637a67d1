package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"govready/internal/app"
	"govready/internal/config"
	"govready/internal/logger"
	"govready/internal/repository"
)

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

	log.Info("started", "store", cfg.Store, "port", cfg.Port,
		"productionReadyThreshold", cfg.Scoring.ProductionReadyThreshold,
		"blockerScaleCutoff", cfg.Scoring.BlockerScaleCutoff)
	ctx := context.Background()

	var a *app.App
	switch cfg.Store {
	case config.StoreMemory:
		catalog, err := repository.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			log.Fatal("Failed to load catalog", "file", cfg.CatalogFile, "error", err)
		}
		log.Info("Using in-memory store", "catalogVersion", catalog.Version)
		a = app.New(cfg, log, app.MemoryStores(catalog), app.Caches{})

	default:
		// MongoDB connection
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB", "error", err)
		}
		log.Info("Connected to MongoDB", "database", cfg.MongoDatabase)

		db := mongoClient.Database(cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			log.Fatal("Failed to create indexes", "error", err)
		}

		// Redis connection
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis", "error", err)
		}
		log.Info("Connected to Redis", "addr", cfg.RedisAddr)

		a = app.New(cfg, log, app.MongoStores(db), app.RedisCaches(rdb, cfg.Cache))
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.Handler(),
	}

	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
