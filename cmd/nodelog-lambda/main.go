package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/handler"
	"github.com/eks-patterns/eksops/pkg/logging"
	"github.com/eks-patterns/eksops/pkg/nodelog"
)

const name = "nodelog"

// overridden during build with ldflags
var version = "dev"

func main() {
	logging.SetDefaultStructuredLogger(name, version)
	ctx := context.Background()

	cfg, err := config.LoadNodeLog(nil)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsclient.Load(ctx, cfg.ClusterRegion)
	if err != nil {
		slog.Error("aws configuration", "error", err)
		os.Exit(1)
	}

	router, err := nodelog.NewFromConfig(cfg, awsclient.New(awsCfg), nil)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	slog.Info("starting", "cluster", cfg.ClusterID, "region", cfg.ClusterRegion)
	lambda.Start(handler.NodeLog(router))
}
