package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	memsheet "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	logger, cfg := cli.Setup(log.ComponentWorker)

	logger.Info("Starting fintrack-worker")

	sqliteRepo := cli.OpenSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	cacheManager := cache.NewManager(logger)

	var exporter sheets.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		cacheManager.Register(client)
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memsheet.New()
		logger.Info("Google Sheets disabled, exporting to memory")
	}

	syncWorker := worker.NewSyncWorker(sqliteRepo, exporter, cfg.SyncBatchSize)
	sweeper := worker.NewSweeper(syncWorker, worker.SweeperConfig{Interval: cfg.SyncInterval})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		g.Go(func() error {
			return amqpClient.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep")
	}

	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return cacheManager.Run(gctx, 10*time.Minute) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
