package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finledger/internal/activity"
	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/bill"
	"finledger/internal/cli"
	"finledger/internal/log"
	"finledger/internal/notify"
	"finledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("starting finledger-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	result, err := backend.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open store", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		result.Cleanup()
		logger.Error("failed to connect AMQP", log.FieldError, err)
		os.Exit(1)
	}

	// Bills flipped overdue by the worker log their activities directly;
	// routing them back through the queue would loop.
	recorder := activity.NewStoreRecorder(result.Store, logger)
	bills := bill.NewService(result.Store, recorder, notify.NewMemory(), logger)

	w := worker.New(amqpClient, result.Store, bills, cfg.UserID, cfg.ScanInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		amqpClient.Close()
		if err := result.Cleanup(); err != nil {
			logger.Error("store cleanup failed", log.FieldError, err)
		}
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		logger.Error("worker stopped", log.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}
