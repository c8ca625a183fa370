package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// These are the command-line flags telemetry-core supports, category-tagged
// for urfave/cli's grouped --help output.
var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: "CONFIG",
	}
	aggregatorsFlag = &cli.IntFlag{
		Name:     "aggregators",
		Usage:    "Number of aggregator shards to run",
		Value:    1,
		Category: "AGGREGATION",
	}
	snapshotIntervalFlag = &cli.DurationFlag{
		Name:     "snapshot-interval",
		Usage:    "Interval between snapshot polls of each shard (values <= 0 fall back to 10s)",
		Value:    10 * time.Second,
		Category: "AGGREGATION",
	}
	stalenessIntervalFlag = &cli.DurationFlag{
		Name:     "staleness-interval",
		Usage:    "Best-block age after which a node is marked stale",
		Value:    60 * time.Second,
		Category: "AGGREGATION",
	}
	logLevelFlag = &cli.StringFlag{
		Name:     "log-level",
		Usage:    "Log level: debug, info, warn, error",
		Value:    "info",
		Category: "LOGGING",
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log-file",
		Usage:    "Write logs to this file (rotated) instead of stderr",
		Category: "LOGGING",
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:     "metrics-addr",
		Usage:    "Address for the admin HTTP listener (/healthz, /metrics)",
		Value:    "127.0.0.1:9651",
		Category: "METRICS",
	}
	runDirFlag = &cli.StringFlag{
		Name:     "run-dir",
		Usage:    "Directory holding the singleton lockfile",
		Value:    ".",
		Category: "CONFIG",
	}
)
