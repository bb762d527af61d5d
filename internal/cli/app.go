package cli

import (
	"context"
	"fmt"

	"finledger/internal/activity"
	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/bill"
	"finledger/internal/budget"
	"finledger/internal/config"
	"finledger/internal/core"
	"finledger/internal/goal"
	"finledger/internal/identity"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/notify"
)

// App bundles the engine services behind the command line surface.
type App struct {
	cfg      *config.Config
	logger   *log.Logger
	identity identity.Provider

	Expenses *ledger.Service
	Incomes  *ledger.Service
	Budgets  *budget.Service
	Goals    *goal.Service
	Bills    *bill.Service

	amqpClient *amqp.Client
	cleanup    backend.CleanupFunc
}

// NewApp wires the configured store, recorder and services.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	result, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		identity: identity.Static{UserID: cfg.UserID},
		cleanup:  result.Cleanup,
	}

	var recorder activity.Recorder
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			result.Cleanup()
			return nil, fmt.Errorf("connect AMQP: %w", err)
		}
		app.amqpClient = client
		recorder = activity.NewQueueRecorder(client, logger)
	} else {
		recorder = activity.NewStoreRecorder(result.Store, logger)
	}

	app.Expenses = ledger.NewService(core.KindExpense, result.Store, recorder, logger)
	app.Incomes = ledger.NewService(core.KindIncome, result.Store, recorder, logger)
	app.Budgets = budget.NewService(result.Store, logger)
	app.Goals = goal.NewService(result.Store, recorder, logger)
	app.Bills = bill.NewService(result.Store, recorder, notify.NewMemory(), logger)
	return app, nil
}

// Close releases the AMQP connection and the store.
func (a *App) Close() error {
	if a.amqpClient != nil {
		a.amqpClient.Close()
	}
	return a.cleanup()
}

func (a *App) userID(ctx context.Context) (string, error) {
	return a.identity.CurrentUserID(ctx)
}
