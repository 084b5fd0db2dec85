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

	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/discovery"
)

func discoverCmd() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Inventory EKS clusters across regions and publish a report",
		Description: `Scans every enabled region (or --regions) of the current account, uploads
a cluster report to S3 and sends its URL to an SNS topic. With --report-only
the report is written to --output instead and nothing is uploaded.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "topic-arn",
				Usage:   "Topic receiving the report notification",
				Sources: cli.EnvVars(config.EnvDiscoveryTopicARN),
			},
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "Bucket receiving the report",
				Sources: cli.EnvVars(config.EnvDiscoveryBucket),
			},
			&cli.StringSliceFlag{
				Name:    "regions",
				Usage:   "Regions to scan (default: all enabled regions)",
				Sources: cli.EnvVars(config.EnvDiscoveryRegions),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Regions scanned at once",
				Sources: cli.EnvVars(config.EnvDiscoveryConcurrency),
			},
			&cli.StringFlag{
				Name:    "report-format",
				Usage:   "Report object format (json or yaml)",
				Sources: cli.EnvVars(config.EnvDiscoveryReportFormat),
			},
			&cli.BoolFlag{
				Name:  "report-only",
				Usage: "Write the report to --output without uploading or notifying",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reportOnly := cmd.Bool("report-only")
			cfg, err := discoveryConfig(cmd, reportOnly)
			if err != nil {
				return err
			}

			clients, err := newAWSClients(ctx, cmd.String("region"))
			if err != nil {
				return err
			}

			if reportOnly {
				d, err := discovery.New(
					discovery.Config{Regions: cfg.Regions, Concurrency: cfg.Concurrency, ReportOnly: true},
					discovery.DepsFromClients(clients),
					discovery.WithToolVersion(version))
				if err != nil {
					return err
				}
				rep, err := d.Collect(ctx)
				if err != nil {
					return err
				}
				return writeOutput(ctx, cmd, rep)
			}

			d, err := discovery.NewFromConfig(cfg, clients, discovery.WithToolVersion(version))
			if err != nil {
				return err
			}
			res, err := d.Run(ctx)
			if res != nil {
				if werr := writeOutput(ctx, cmd, res); werr != nil {
					return werr
				}
			}
			return err
		},
	}
}

// discoveryConfig layers set flags over the config file. Bucket and topic
// are only required when the report is published.
func discoveryConfig(cmd *cli.Command, reportOnly bool) (*config.Discovery, error) {
	file, err := loadConfigFile(cmd)
	if err != nil {
		return nil, err
	}
	cfg := file.Discovery

	if cmd.IsSet("topic-arn") {
		cfg.TopicARN = cmd.String("topic-arn")
	}
	if cmd.IsSet("bucket") {
		cfg.Bucket = cmd.String("bucket")
	}
	if cmd.IsSet("regions") {
		cfg.Regions = cmd.StringSlice("regions")
	}
	if cmd.IsSet("concurrency") {
		cfg.Concurrency = cmd.Int("concurrency")
	}
	if cmd.IsSet("report-format") {
		cfg.ReportFormat = cmd.String("report-format")
	}

	if reportOnly {
		if cfg.Concurrency <= 0 {
			return nil, fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
		}
		return &cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
