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
	"time"

	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/bundle"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/defaults"
)

// BundleReport lists log bundles uploaded within a window.
type BundleReport struct {
	Bucket  string          `json:"bucket" yaml:"bucket"`
	Prefix  string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Window  string          `json:"window" yaml:"window"`
	Count   int             `json:"count" yaml:"count"`
	Objects []bundle.Object `json:"objects" yaml:"objects"`
}

func bundlesCmd() *cli.Command {
	return &cli.Command{
		Name:  "bundles",
		Usage: "Inspect uploaded node log bundles",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "List bundles uploaded within the recency window",
				Description: `Lists the objects the fleet-wide remediation guard looks at. When any
object is returned, a fleet alert would be deduplicated.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bucket",
						Usage:   "Log collection bucket (default: nodeLog.bucket from --config)",
						Sources: cli.EnvVars(config.EnvBucket),
					},
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Only consider keys under this prefix",
						Sources: cli.EnvVars(config.EnvBucketPrefix),
					},
					&cli.DurationFlag{
						Name:  "window",
						Value: defaults.BundleRecency,
						Usage: "Recency window",
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					file, err := loadConfigFile(cmd)
					if err != nil {
						return err
					}
					bucket, prefix := file.NodeLog.Bucket, file.NodeLog.BucketPrefix
					if cmd.IsSet("bucket") {
						bucket = cmd.String("bucket")
					}
					if cmd.IsSet("prefix") {
						prefix = cmd.String("prefix")
					}

					clients, err := newAWSClients(ctx, cmd.String("region"))
					if err != nil {
						return err
					}
					rep, err := recentBundles(ctx, clients.S3, bucket, prefix, cmd.Duration("window"))
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, rep)
				},
			},
		},
	}
}

func recentBundles(ctx context.Context, api awsclient.S3API, bucket, prefix string, window time.Duration) (*BundleReport, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required (--bucket or %s)", config.EnvBucket)
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}

	objs, err := bundle.NewGuard(api, bucket, bundle.WithPrefix(prefix)).Recent(ctx, window)
	if err != nil {
		return nil, err
	}
	if objs == nil {
		objs = []bundle.Object{}
	}
	return &BundleReport{
		Bucket:  bucket,
		Prefix:  prefix,
		Window:  window.String(),
		Count:   len(objs),
		Objects: objs,
	}, nil
}
