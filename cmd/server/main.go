package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/config"
	"github.com/dewvow/housepulse/internal/api"
	"github.com/dewvow/housepulse/internal/demographics"
	"github.com/dewvow/housepulse/internal/enrichment"
	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/normalizer"
	"github.com/dewvow/housepulse/internal/notify"
	"github.com/dewvow/housepulse/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	recordStore, err := newStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize record store")
	}

	gaz := gazetteer.NewLoader(logger, cfg.Gazetteer.Path)
	gaz.Load()

	client := demographics.NewClient(
		logger,
		cfg.Census.APIBase,
		cfg.Census.Timeout,
		demographics.NewCache(),
		demographics.NewLookupTable(logger, cfg.Census.LanguagesPath),
		demographics.NewLookupTable(logger, cfg.Census.OccupationPath),
	)

	queue := enrichment.NewJobQueue(cfg.Enrichment.QueueSize, logger)
	tracker := enrichment.NewTracker()
	pool := enrichment.NewPool(recordStore, gaz, client, tracker, queue, cfg.Enrichment.WorkerCount, logger)
	sweeper := enrichment.NewSweeper(recordStore, queue, tracker, cfg.Enrichment.SweepInterval, logger)

	queue.Start()
	pool.Start()
	sweeper.Start()

	notifier := notify.NewService(notify.Config{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		MinYield: cfg.Telegram.MinYield,
	}, logger)

	norm := normalizer.New(logger, gaz)
	handler := api.NewHandler(recordStore, norm, gaz, pool, queue, tracker, notifier, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(router, handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced server shutdown")
	}

	sweeper.Stop()
	queue.Close()
	pool.Stop()

	logger.Info("Server stopped")
}

func newStore(cfg *config.Config, logger *logrus.Logger) (store.RecordStore, error) {
	if cfg.Storage.Backend == "sqlite" {
		return store.NewSQLiteStore(logger, cfg.Storage.SQLitePath)
	}
	return store.NewFileStore(logger, cfg.Storage.DataFile)
}
