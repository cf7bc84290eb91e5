package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/retweets/internal/api"
	"github.com/timmy/retweets/internal/config"
	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
	"github.com/timmy/retweets/internal/model"
	"github.com/timmy/retweets/internal/repository"
	"github.com/timmy/retweets/internal/service"
	"github.com/timmy/retweets/internal/storage"
	"github.com/timmy/retweets/internal/textproc"
	"github.com/timmy/retweets/internal/tokenizer"
)

const serviceName = "retweets-api"

func main() {
	bootCfg := logger.ConfigFromEnv()
	bootCfg.ServiceName = serviceName
	appLogger := logger.New(bootCfg)
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	appLogger = logger.New(cfg.Log.LoggerConfig(serviceName))
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx := appLogger.WithContext(context.Background())

	objectStorage, err := storage.NewStorage(ctx, &storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	files := storage.NewFiles(objectStorage)

	normalizer, err := textproc.LoadNormalizer(cfg.Text.StopwordsPath, cfg.Text.LemmaExceptionPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load text resources")
	}

	// Missing artifacts degrade predictions to the error view instead of
	// stopping the server.
	vocab, err := service.LoadVocabulary(ctx, files, cfg.Tokenizer.Path)
	if err != nil {
		if !domain.IsDegraded(err) {
			appLogger.WithError(err).Fatal("Failed to load vocabulary")
		}
		appLogger.WithError(err).Warn("Vocabulary unavailable, predictions will fail until it is provided")
	}

	modelClient, err := model.NewClient(&model.ClientConfig{
		BaseURL: cfg.Model.URL,
		Name:    cfg.Model.Name,
		Version: cfg.Model.Version,
		Timeout: cfg.Model.Timeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create model client")
	}
	if err := modelClient.Status(ctx); err != nil {
		appLogger.WithError(err).Warn("Model server not ready")
	}

	db, err := repository.InitDB(ctx, &cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer repository.Close(db)

	predictionService, err := service.NewPredictionService(normalizer, vocab, modelClient, &service.PredictionConfig{
		PadSide:   tokenizer.PadSide(cfg.Tokenizer.PadSide),
		MaxLength: cfg.Tokenizer.MaxLength,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create prediction service")
	}
	tweetRepo := repository.NewTweetRepository(db)
	submissionService := service.NewSubmissionService(predictionService, tweetRepo)

	router := api.SetupRouter(submissionService, tweetRepo, modelClient, cfg.Server.Mode, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"addr": srv.Addr,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.CtxError(ctx, "Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}

