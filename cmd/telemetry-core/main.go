// Command telemetry-core runs the in-memory telemetry aggregation core: it
// wires an aggregatorset.Set, serves a minimal admin HTTP listener
// (/healthz, /metrics), and exits cleanly on SIGINT/SIGTERM. The feeder that
// produces FromShard ingress and the feed/websocket layer that calls
// SubscribeFeed are external collaborators, out of scope here.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/urfave/cli/v2"

	"github.com/availproject/substrate-telemetry-core/internal/aggregator"
	"github.com/availproject/substrate-telemetry-core/internal/aggregatorset"
	"github.com/availproject/substrate-telemetry-core/internal/config"
	"github.com/availproject/substrate-telemetry-core/internal/findlocation"
	tlog "github.com/availproject/substrate-telemetry-core/internal/log"
)

var app = &cli.App{
	Name:  "telemetry-core",
	Usage: "distributed blockchain network telemetry aggregation core",
	Flags: []cli.Flag{
		configFileFlag,
		aggregatorsFlag,
		snapshotIntervalFlag,
		stalenessIntervalFlag,
		logLevelFlag,
		logFileFlag,
		metricsAddrFlag,
		runDirFlag,
	},
	Action: run,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cliCtx *cli.Context) error {
	cfg := config.Default()
	if file := cliCtx.String(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	applyFlags(cliCtx, &cfg)

	logger := tlog.New(tlog.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	lock := flock.New(cfg.RunDir + "/telemetry-core.lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lockfile: %w", err)
	}
	if !locked {
		return fmt.Errorf("another telemetry-core instance already holds the lockfile in %s", cfg.RunDir)
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := aggregatorset.New(ctx, cfg.Aggregators, aggregator.Opts{
		Resolver:          findlocation.NewCache(findlocation.Null{}),
		StalenessInterval: cfg.StalenessInterval,
		Logger:            logger,
	}, cfg.SnapshotInterval, logger)
	if err != nil {
		return fmt.Errorf("start aggregator set: %w", err)
	}

	logger.Info("aggregator set started", "shards", set.ShardCount())

	srv := newAdminServer(cfg.MetricsAddr, set, logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
			logger.Error("admin server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	return srv.Close()
}

func applyFlags(cliCtx *cli.Context, cfg *config.Config) {
	if cliCtx.IsSet(aggregatorsFlag.Name) {
		cfg.Aggregators = cliCtx.Int(aggregatorsFlag.Name)
	}
	if cliCtx.IsSet(snapshotIntervalFlag.Name) {
		cfg.SnapshotInterval = cliCtx.Duration(snapshotIntervalFlag.Name)
	}
	if cliCtx.IsSet(stalenessIntervalFlag.Name) {
		cfg.StalenessInterval = cliCtx.Duration(stalenessIntervalFlag.Name)
	}
	if cliCtx.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = cliCtx.String(logLevelFlag.Name)
	}
	if cliCtx.IsSet(logFileFlag.Name) {
		cfg.LogFile = cliCtx.String(logFileFlag.Name)
	}
	if cliCtx.IsSet(metricsAddrFlag.Name) {
		cfg.MetricsAddr = cliCtx.String(metricsAddrFlag.Name)
	}
	if cliCtx.IsSet(runDirFlag.Name) {
		cfg.RunDir = cliCtx.String(runDirFlag.Name)
	}
}
