/*
Copyright © 2025 The eksops Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/logging"
)

const (
	name           = "eksops"
	versionDefault = "dev"

	exitError    = 1
	exitCanceled = 2
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// newRootCmd builds the command tree.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "EKS node log collection and cluster discovery",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `Tooling around two EKS operations flows:

nodelog  - turns alerts about not ready nodes into SSM log collection runs.
discover - inventories EKS clusters across regions and publishes a report.

The nodes and bundles commands inspect the state those flows act on.`,
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.EnvLogLevel),
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region for API calls (default: resolved by the AWS SDK)",
				Sources: cli.EnvVars("AWS_REGION", "AWS_DEFAULT_REGION"),
			},
		},
		Before: initLogger,
		Commands: []*cli.Command{
			nodelogCmd(),
			nodesCmd(),
			bundlesCmd(),
			discoverCmd(),
		},
	}
}

// Execute runs the CLI with os.Args and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, context.Canceled) {
		os.Exit(exitCanceled)
	}
	os.Exit(exitError)
}

// initLogger configures slog once flags are parsed so --log-level takes
// effect before any command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logLevel := cmd.String("log-level")
	logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", logLevel)
	return ctx, nil
}
