package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DropShort/Short-File-Service/internal/api"
	"github.com/DropShort/Short-File-Service/internal/api/handlers"
	"github.com/DropShort/Short-File-Service/internal/blob"
	"github.com/DropShort/Short-File-Service/internal/configuration"
	"github.com/DropShort/Short-File-Service/internal/services"
	"github.com/DropShort/Short-File-Service/internal/services/command"
	"github.com/DropShort/Short-File-Service/internal/services/query"
	"github.com/DropShort/Short-File-Service/internal/storage"
	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {
	cfg, err := configuration.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metadata storage: %v", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// Messaging is best-effort: run without it rather than refuse to start.
	var events *services.EventPublisher
	if cfg.NATSURL != "" {
		events, err = services.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: failed to connect to NATS: %v", err)
			log.Println("Continuing without event publishing...")
		}
	}

	var scanner *services.Scanner
	if cfg.CLAMAVURL != "" {
		scanner = services.NewScanner(cfg.CLAMAVURL, blobs, events)
	}

	tracer.Start(tracer.WithService("short-file-service"))
	defer tracer.Stop()

	h := &handlers.Handler{
		Uploader: &command.Uploader{
			Storage: store,
			Blobs:   blobs,
			Events:  events,
			Scanner: scanner,
			Host:    cfg.Host,
		},
		Retriever: &query.Retriever{
			Storage: store,
			Blobs:   blobs,
			Events:  events,
		},
		UploadToken: cfg.SecretKey,
	}

	setupGracefulShutdown(events)

	r := gin.Default()
	api.RegisterRoutes(r, h, cfg.SecretKey, cfg.MaxContentMB)

	log.Println("Server starting on :" + cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newStorage(cfg *configuration.Config) (storage.Storage, error) {
	if cfg.MetadataBackend == "postgres" {
		return storage.NewPostgresStorage(cfg.Database.ConnectionString())
	}
	log.Println("Using local metadata storage:", cfg.MetadataFile)
	return storage.NewLocalStorage(cfg.MetadataFile)
}

func newBlobStore(cfg *configuration.Config) (blob.Store, error) {
	if cfg.BlobBackend == "minio" {
		return blob.NewMinioStore(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.BucketName,
			cfg.MinIO.UseSSL,
		)
	}
	log.Println("Using local blob storage:", cfg.UploadFolder)
	return blob.NewLocalStore(cfg.UploadFolder)
}

func setupGracefulShutdown(events *services.EventPublisher) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		events.Close()
		tracer.Stop()
		os.Exit(0)
	}()
}
