package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/skillang/leadg-crm/internal/api"
	"github.com/skillang/leadg-crm/internal/config"
	"github.com/skillang/leadg-crm/internal/leadimport"
	"github.com/skillang/leadg-crm/internal/pkg/distlock"
	"github.com/skillang/leadg-crm/internal/repository/postgres"
	"github.com/skillang/leadg-crm/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in
// use, so a stale process fails the boot loudly instead of silently
// serving old code.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Redis backs import progress tracking. The server runs without it.
	var progress *worker.ProgressTracker
	var lockRedis *redis.Client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, progress tracking disabled: %v", cfg.Redis.Addr, err)
		redisClient.Close()
	} else {
		lockRedis = redisClient
		progress = worker.NewProgressTracker(redisClient)
		defer redisClient.Close()
		log.Printf("Connected to redis at %s", cfg.Redis.Addr)
	}
	pingCancel()

	if cfg.Import.MaxFileSizeMB > 0 {
		leadimport.MaxFileSize = int64(cfg.Import.MaxFileSizeMB) << 20
	}

	activityRepo := postgres.NewActivityRepo(db)
	leadRepo := postgres.NewLeadRepo(db, activityRepo)
	importLog := postgres.NewImportLogRepo(db)
	pipeline := leadimport.NewPipeline(leadRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var importer *worker.DropFolderImporter
	if cfg.DropFolder.Enabled {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.DropFolder.Region),
		}
		if cfg.DropFolder.AWSProfile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.DropFolder.AWSProfile))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}

		importer = worker.NewDropFolderImporter(
			s3.NewFromConfig(awsCfg),
			pipeline,
			importLog,
			progress,
			worker.Options{
				Bucket:      cfg.DropFolder.Bucket,
				Schedule:    cfg.DropFolder.Schedule,
				Concurrency: cfg.DropFolder.Concurrency,
				MaxRetries:  cfg.DropFolder.MaxRetries,
				ForceCreate: cfg.DropFolder.ForceCreate,
				Lock:        distlock.NewLock(lockRedis, db, "drop-folder-scan", 10*time.Minute),
			},
		)
		if err := importer.Start(ctx); err != nil {
			log.Fatalf("Failed to start drop-folder importer: %v", err)
		}
		log.Printf("Drop-folder importer watching s3://%s (schedule %q)",
			cfg.DropFolder.Bucket, cfg.DropFolder.Schedule)
	}

	handlers := api.NewHandlers(pipeline, activityRepo, importLog, importer, progress)
	server := api.NewServer(handlers, cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("LeadG CRM API listening on %s", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	}

	if importer != nil {
		importer.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
