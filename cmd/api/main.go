package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billzsync/internal/api"
	"billzsync/internal/catalog"
	"billzsync/internal/config"
	"billzsync/internal/database"
	"billzsync/internal/logger"
	"billzsync/internal/media"
	"billzsync/internal/notify"
	"billzsync/internal/services/billz"
	"billzsync/internal/settings"
	"billzsync/internal/staging"
	"billzsync/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logg := logger.New(cfg.LogLevel, cfg.Env)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	tokens := billz.NewGormTokenStore(db.DB)
	fetcher := billz.NewClient(cfg.BillzAPIURL, cfg.BillzSecretToken, cfg.PageSize, tokens, logg)

	terms := catalog.NewTermService(db.DB)
	catalogStore := catalog.NewGormStore(db.DB, terms, cfg.Policies, logg)
	mediaStore := media.NewStore(db.DB, cfg.MediaDir, logg)
	stagingStore := staging.NewStore(db.DB)
	runStore := staging.NewRunStore(db.DB)
	settingsStore := settings.NewStore(db.DB)

	notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, logg)
	defer notifier.Close()
	queue := notify.NewQueue(cfg.KafkaBrokers, logg)
	defer queue.Close()

	pipeline := sync.NewPipeline(fetcher, settingsStore, terms, mediaStore, stagingStore, catalogStore, notifier, runStore, cfg, logg)

	server := api.New(cfg, logg, db, pipeline, runStore, stagingStore, settingsStore, queue)

	go func() {
		if err := server.Start(); err != nil {
			logg.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logg.Error().Err(err).Msg("shutdown failed")
	}
}
