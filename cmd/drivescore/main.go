package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/fortuna/drivescore/internal/api/rest"
	"github.com/fortuna/drivescore/internal/cache"
	"github.com/fortuna/drivescore/internal/config"
	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/pipeline"
	"github.com/fortuna/drivescore/internal/publisher"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/service"
	"github.com/fortuna/drivescore/internal/store"
	"github.com/fortuna/drivescore/internal/store/repository"
)

const (
	serviceName    = "drivescore"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Drive Scoring Service", serviceName, serviceVersion)

	flags := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	cfgFile := flags.String("config", "", "config file (default: ./drivescore.yaml)")
	flags.Int("port", 0, "REST API port")
	flags.String("database-url", "", "Postgres URL")
	flags.String("redis-url", "", "Redis URL (optional)")
	flags.Bool("migrate", true, "Apply database migrations on start")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatalf("database.url is required (set DRIVESCORE_DATABASE__URL or --database-url)")
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Println("✓ Database migrations applied")
	}

	runner := pipeline.NewRunner(
		gamecenter.NewLoader(cfg.DataDir, nil),
		normalize.New(cfg.NormalizerConfig(), nil),
		scoring.NewEngine(cfg.EngineOptions(), nil),
		nil,
	)
	runner.AddSink(pipeline.NewFileSink(cfg.OutputDir))
	runner.AddSink(pipeline.NewDatabaseSink(repository.NewDriveRepository(db), repository.NewRatingRepository(db)))
	runner.SetRecorder(repository.NewRunRepository(db))

	// Redis is optional: without it ratings are read straight from Postgres
	// and nothing is published.
	var redisCache *cache.RedisCache
	if cfg.Redis.URL != "" {
		redisCache = connectCache(cfg.Redis.URL, cfg.Redis.CacheTTL)
		defer redisCache.Close()
		log.Println("✓ Connected to Redis")

		pub := publisher.NewRedisStreamPublisher(redisCache.Client(), cfg.Redis.Stream)
		runner.AddSink(pipeline.NewCacheSink(redisCache))
		runner.AddSink(pipeline.NewPublisherSink(pub))
		log.Printf("✓ Redis publisher initialized (stream %s)", pub.Stream())
	}

	runService := service.NewRunService(runner, repository.NewRunRepository(db), nil)

	handler := rest.NewHandler(
		service.NewRatingsServiceFromDB(db, redisCache, nil),
		service.NewGameServiceFromDB(db),
	)
	handler.AddHealthCheck("postgres", db)
	if redisCache != nil {
		handler.AddHealthCheck("redis", redisCache)
	}
	runHandler := rest.NewRunHandler(runService, pipeline.JobSpec{
		StartSeason: cfg.StartSeason,
		EndSeason:   cfg.EndSeason,
	})

	// Initialize REST API server
	restServer := rest.NewServer(cfg.Server.Port, handler, runHandler)
	go func() {
		log.Printf("Starting REST API server on port %d", cfg.Server.Port)
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%d/api/v1", cfg.Server.Port)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := runService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Run service shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// connectCache retries until Redis accepts connections.
func connectCache(redisURL string, ttl time.Duration) *cache.RedisCache {
	const maxRetries = 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; ; i++ {
		rc, err := cache.NewRedisCache(redisURL, ttl)
		if err == nil {
			return rc
		}
		if i == maxRetries-1 {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
		log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
		time.Sleep(retryDelay)
	}
}
