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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/defaults"
)

func discoverTestFlags() []cli.Flag {
	return append([]cli.Flag{configFlag()}, discoverCmd().Flags...)
}

func TestDiscoveryConfig(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		reportOnly bool
		wantErr    bool
		check      func(t *testing.T, cfg *config.Discovery)
	}{
		{
			name: "publish",
			args: []string{
				"--topic-arn", "arn:aws:sns:us-east-1:123456789012:eks",
				"--bucket", "reports",
				"--regions", "us-east-1,eu-west-1",
				"--concurrency", "2",
				"--report-format", "YAML",
			},
			check: func(t *testing.T, cfg *config.Discovery) {
				assert.Equal(t, "reports", cfg.Bucket)
				assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.Regions)
				assert.Equal(t, 2, cfg.Concurrency)
				assert.Equal(t, "yaml", cfg.ReportFormat)
			},
		},
		{
			name:    "publish needs topic and bucket",
			args:    []string{"--bucket", "reports"},
			wantErr: true,
		},
		{
			name:       "report only needs neither",
			reportOnly: true,
			check: func(t *testing.T, cfg *config.Discovery) {
				assert.Empty(t, cfg.Bucket)
				assert.Equal(t, defaults.DiscoveryConcurrency, cfg.Concurrency)
			},
		},
		{
			name:       "report only rejects bad concurrency",
			args:       []string{"--concurrency", "0"},
			reportOnly: true,
			wantErr:    true,
		},
		{
			name: "bad report format",
			args: []string{
				"--topic-arn", "arn:aws:sns:us-east-1:123456789012:eks",
				"--bucket", "reports",
				"--report-format", "csv",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg *config.Discovery
			err := runCommand(t, discoverTestFlags(), tt.args, func(_ context.Context, c *cli.Command) error {
				var err error
				cfg, err = discoveryConfig(c, tt.reportOnly)
				return err
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
