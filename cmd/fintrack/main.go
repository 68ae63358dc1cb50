// Command fintrack is the terminal client for a fintrack-api server.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/gateway"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	// stdout belongs to the REPL
	logger := cli.SetupLogger(cfg.LogLevelOr("warn"), os.Stderr)
	cli.MustValidate(logger, cfg.ValidateClient)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	viewCache := cache.NewLRUCache[ledger.View](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(viewCache)
	cacheManager.StartCleanup(cfg.ViewCacheTTL)
	defer cacheManager.Stop()

	store := ledger.NewStore()
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	gw := gateway.New(client, store, logger)
	app := cli.NewApp(gw, ledger.NewViews(store, viewCache), notify.NewCenter(cfg.NotificationTTL), os.Stdout)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.AMQPURL != "" {
		subscribe(gctx, g, cfg, logger, app)
	}
	g.Go(func() error {
		app.Run(gctx, os.Stdin)
		// leaving the REPL ends the subscription too
		stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// unblocks a REPL waiting for input after a signal
		_ = os.Stdin.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Client stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

// subscribe reloads the ledger whenever another client writes. A broker
// that cannot be reached only disables live updates.
func subscribe(ctx context.Context, g *errgroup.Group, cfg *config.Config, logger *log.Logger, app *cli.App) {
	sub, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Live updates disabled", log.FieldError, err)
		return
	}
	g.Go(func() error {
		defer sub.Close()
		err := sub.ConsumeTransactionChanged(ctx, func(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
			reloadCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout+5*time.Second)
			defer cancel()
			return app.RemoteChanged(reloadCtx, msg.Operation, msg.TransactionID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Live updates stopped", log.FieldError, err)
		}
		return nil
	})
}
