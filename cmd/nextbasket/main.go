// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package main is the entry point for nextbasket.
//
// Nextbasket mines co-purchase association rules from monthly order-detail
// exports, merges them into a persistent rule store, and suggests the most
// probable next product for a basket.
//
// # Commands
//
//	nextbasket run     process periods.start..periods.end once and exit
//	nextbasket serve   run the pipeline on a cron schedule and serve the HTTP API
//	nextbasket version print the version
//
// run is the default when no command is given. It exits 1 when rules for
// any period could not reach the store; periods with no data or no rules
// are logged and do not change the exit code.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables (MIN_SUPPORT_RATIO, DATA_DIRECTORY, STORE_PATH, ...)
//   - Config file ($CONFIG_PATH or config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
// One-off run over a local export directory, rules kept in memory:
//
//	export DATA_DIRECTORY=./data1/data
//	export STORE_IN_MEMORY=true
//	./nextbasket run
//
// Long-running service with a persistent store:
//
//	export STORE_PATH=/data/rules
//	export SCHEDULE_CRON="0 3 1 * *"
//	./nextbasket serve
//
// # Signal Handling
//
// Both commands stop on SIGINT and SIGTERM. run stops before the next
// period; serve stops the scheduler, waits for a run in progress, and
// drains in-flight HTTP requests.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/nextbasket/internal/config"
	"github.com/tomtom215/nextbasket/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: nextbasket [run|serve|version]

  run      mine the configured period range once and exit (default)
  serve    run the pipeline on schedule and serve the HTTP API
  version  print the version
`

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	command := "run"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "run", "serve":
	case "version":
		fmt.Fprintf(stdout, "nextbasket %s\n", version)
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	logging.Init(cfg.LoggingConfig())

	logging.Info().
		Str("command", command).
		Str("version", version).
		Str("config", cfg.String()).
		Msg("Starting nextbasket")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "serve" {
		return serve(ctx, cfg)
	}
	return run(ctx, cfg)
}
