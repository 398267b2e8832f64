/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpHdlr "pdfchat/handler/http"
	"pdfchat/src/core/docchat"
	"pdfchat/src/infrastructure/integrations/groq"
	"pdfchat/src/infrastructure/integrations/ollama"
	"pdfchat/src/infrastructure/job"
	"pdfchat/src/log"
	"pdfchat/src/storage/chromemdb"
	"pdfchat/src/storage/minioctrl"
	"pdfchat/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PDF chat server",
	Long:  `The serve command starts an HTTP server that provides the PDF chat API and web UI.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	settingDefaultConfig()
}

func runServe(cmd *cobra.Command, args []string) error {
	apiKey := viper.GetString("groq.api_key")
	if apiKey == "" {
		return fmt.Errorf("GROQ_API_KEY is not set")
	}

	// Initialize Groq client
	groqClient := groq.NewClient(groq.Config{
		BaseURL:     viper.GetString("groq.url"),
		APIKey:      apiKey,
		Model:       viper.GetString("groq.model"),
		Temperature: viper.GetFloat64("groq.temperature"),
		TopP:        viper.GetFloat64("groq.top_p"),
	}, nil)

	// Initialize Ollama embedding client
	embedder, err := ollama.NewClient(viper.GetString("ollama.url"), viper.GetString("embedding.model"))
	if err != nil {
		return fmt.Errorf("failed to create ollama client: %w", err)
	}

	// Initialize the vector store backend
	index, err := newVectorIndex()
	if err != nil {
		return err
	}

	ttl, err := time.ParseDuration(viper.GetString("session.ttl"))
	if err != nil {
		return fmt.Errorf("invalid session.ttl: %w", err)
	}

	// Initialize the optional archival pipeline
	var recorder docchat.Recorder
	if viper.GetBool("archive.enabled") {
		archiver, cleanup, err := newArchiver()
		if err != nil {
			return err
		}
		defer cleanup()
		recorder = archiver
		log.Info("archiving enabled", "bucket", viper.GetString("minio.bucket"))
	}

	// Initialize the session manager and pipeline services
	mgr := docchat.NewManager(index, ttl)
	defer mgr.Close()

	chunker := docchat.NewChunker(viper.GetInt("chunk.size"), viper.GetInt("chunk.overlap"))
	ingestor := docchat.NewIngestor(chunker, embedder, index)
	searcher := docchat.NewSearcher(embedder, index)

	// Initialize HTTP handler with individual services
	handler := httpHdlr.NewHandler(
		mgr,
		docchat.NewIngestService(mgr, ingestor, recorder),
		docchat.NewSearchService(mgr, searcher),
		docchat.NewChatService(mgr, searcher, groqClient, viper.GetInt("retrieval.top_k"), recorder),
		docchat.NewSystemService(groqClient, embedder, index),
		viper.GetInt64("upload.max_file_bytes"),
	)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
		}
	}()

	log.Info("Server listening", "addr", srv.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
	return nil
}

// newVectorIndex builds the configured vector store backend
func newVectorIndex() (docchat.VectorIndex, error) {
	switch backend := viper.GetString("vectorstore.backend"); backend {
	case "chromem":
		path := viper.GetString("vectorstore.path")
		if path == "" {
			return chromemdb.NewStore(), nil
		}
		store, err := chromemdb.NewPersistentStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store: %w", err)
		}
		return store, nil
	case "weaviate":
		wc := weaviateClient.New(weaviateClient.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: viper.GetString("weaviate.scheme"),
		})
		return weaviate.NewIndex(weaviate.NewSDK(wc)), nil
	default:
		return nil, fmt.Errorf("unknown vectorstore.backend: %s", backend)
	}
}

// newArchiver wires the archival pipeline: MinIO for PDF copies,
// PostgreSQL for job tracking, AMQP for the worker queue.
func newArchiver() (*job.Archiver, func(), error) {
	db, err := openPostgres()
	if err != nil {
		return nil, nil, err
	}

	publisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize minio service: %v", err)
	}

	bucket := viper.GetString("minio.bucket")
	if err := minioService.EnsureBucketExists(context.Background(), bucket); err != nil {
		return nil, nil, err
	}

	jobRepo := job.NewPostgresJobRepository(db)
	jobService := job.NewJobService(publisher, jobRepo, watermill.NewStdLogger(false, false), nil)

	cleanup := func() {
		publisher.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return job.NewArchiver(jobService, minioService, bucket), cleanup, nil
}

// openPostgres dials PostgreSQL with the configured credentials
func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return db, nil
}
