package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/discovery"
	"github.com/eks-patterns/eksops/pkg/handler"
	"github.com/eks-patterns/eksops/pkg/logging"
)

const name = "discovery"

// overridden during build with ldflags
var version = "dev"

func main() {
	logging.SetDefaultStructuredLogger(name, version)
	ctx := context.Background()

	cfg, err := config.LoadDiscovery(nil)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsclient.Load(ctx, "")
	if err != nil {
		slog.Error("aws configuration", "error", err)
		os.Exit(1)
	}

	d, err := discovery.NewFromConfig(cfg, awsclient.New(awsCfg), discovery.WithToolVersion(version))
	if err != nil {
		slog.Error("failed to build discoverer", "error", err)
		os.Exit(1)
	}

	lambda.Start(handler.Discovery(d))
}
