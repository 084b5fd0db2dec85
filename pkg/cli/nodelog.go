// Copyright (c) 2025, The eksops Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/api"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/handler"
	"github.com/eks-patterns/eksops/pkg/nodelog"
	"github.com/eks-patterns/eksops/pkg/serializer"
	"github.com/eks-patterns/eksops/pkg/server"
)

func nodelogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cluster",
			Usage:   "EKS cluster name the alerts refer to",
			Sources: cli.EnvVars(config.EnvClusterID),
		},
		&cli.StringFlag{
			Name:    "cluster-region",
			Usage:   "Region of the cluster",
			Sources: cli.EnvVars(config.EnvClusterRegion),
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Bucket receiving log bundles",
			Sources: cli.EnvVars(config.EnvBucket),
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "Key prefix considered by the bundle recency check",
			Sources: cli.EnvVars(config.EnvBucketPrefix),
		},
		&cli.StringFlag{
			Name:    "role-arn",
			Usage:   "Role assumed by SSM while running the automation",
			Sources: cli.EnvVars(config.EnvAutomationRoleARN),
		},
		&cli.StringFlag{
			Name:    "document",
			Usage:   "SSM automation document",
			Sources: cli.EnvVars(config.EnvDocumentName),
		},
		&cli.IntFlag{
			Name:    "nodes-max",
			Usage:   "Cap on nodes remediated per fleet alert",
			Sources: cli.EnvVars(config.EnvNodesMax),
		},
		&cli.IntFlag{
			Name:    "bundle-recency-seconds",
			Usage:   "Window in which a recent bundle suppresses fleet remediation",
			Sources: cli.EnvVars(config.EnvBundleRecencySeconds),
		},
		&cli.FloatFlag{
			Name:    "executions-per-second",
			Usage:   "Pace of automation starts",
			Sources: cli.EnvVars(config.EnvExecutionsPerSecond),
		},
	}
}

func nodelogCmd() *cli.Command {
	return &cli.Command{
		Name:  "nodelog",
		Usage: "Collect node logs in response to not ready alerts",
		Description: `Settings are resolved from flags, then their environment variables, then
the nodeLog section of --config.`,
		Flags: nodelogFlags(),
		Commands: []*cli.Command{
			{
				Name:  "handle",
				Usage: "Handle an SNS event read from a file or URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "event",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Path or HTTP(S) URL of an SNS event (JSON or YAML)",
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := nodeLogConfig(cmd)
					if err != nil {
						return err
					}

					path := cmd.String("event")
					event, err := serializer.FromFile[events.SNSEvent](ctx, path)
					if err != nil {
						return fmt.Errorf("failed to load event from %q: %w", path, err)
					}

					clients, err := newAWSClients(ctx, cfg.ClusterRegion)
					if err != nil {
						return err
					}
					router, err := nodelog.NewFromConfig(cfg, clients, nil)
					if err != nil {
						return err
					}

					return handleEvent(ctx, cmd, router, event)
				},
			},
			{
				Name:  "serve",
				Usage: "Serve an SNS HTTP(S) subscription endpoint",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   8080,
						Usage:   "Listen port",
						Sources: cli.EnvVars(server.EnvPort),
					},
					&cli.StringFlag{
						Name:    "topic-arn",
						Usage:   "Only accept messages from this topic",
						Sources: cli.EnvVars(server.EnvTopicARN),
					},
					&cli.BoolFlag{
						Name:  "skip-signature-verification",
						Usage: "Accept unsigned SNS messages (local testing only)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := nodeLogConfig(cmd)
					if err != nil {
						return err
					}

					srvCfg := serverConfig(cmd)
					opts := []server.Option{
						server.WithConfig(srvCfg),
						server.WithName(name),
						server.WithVersion(version),
					}
					if cmd.Bool("skip-signature-verification") {
						slog.Warn("sns signature verification disabled")
						opts = append(opts, server.WithVerifier(nil))
					}

					s, err := api.NewServerFromConfig(ctx, cfg, opts...)
					if err != nil {
						return err
					}
					return s.Run(ctx)
				},
			},
		},
	}
}

// nodeLogConfig layers set flags over the config file and validates the result.
func nodeLogConfig(cmd *cli.Command) (*config.NodeLog, error) {
	file, err := loadConfigFile(cmd)
	if err != nil {
		return nil, err
	}
	cfg := file.NodeLog

	setIf := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	setIf("cluster", &cfg.ClusterID)
	setIf("cluster-region", &cfg.ClusterRegion)
	setIf("bucket", &cfg.Bucket)
	setIf("prefix", &cfg.BucketPrefix)
	setIf("role-arn", &cfg.AutomationRoleARN)
	setIf("document", &cfg.DocumentName)

	if cmd.IsSet("nodes-max") {
		cfg.NodesMax = cmd.Int("nodes-max")
	}
	if cmd.IsSet("bundle-recency-seconds") {
		cfg.BundleRecency = time.Duration(cmd.Int("bundle-recency-seconds")) * time.Second
	}
	if cmd.IsSet("executions-per-second") {
		cfg.ExecutionsPerSecond = cmd.Float("executions-per-second")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func serverConfig(cmd *cli.Command) *server.Config {
	cfg := server.NewConfig()
	cfg.Port = cmd.Int("port")
	if cmd.IsSet("topic-arn") {
		cfg.TopicARN = cmd.String("topic-arn")
	}
	return cfg
}

// handleEvent routes event through r and writes the summary. Routing errors
// are returned after the summary is written.
func handleEvent(ctx context.Context, cmd *cli.Command, r handler.EventRouter, event *events.SNSEvent) error {
	sum, err := r.HandleSNSEvent(ctx, *event)
	if sum != nil {
		if werr := writeOutput(ctx, cmd, sum); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("event handled with errors: %w", err)
	}
	return nil
}
