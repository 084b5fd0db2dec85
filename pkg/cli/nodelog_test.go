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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
	"github.com/eks-patterns/eksops/pkg/nodelog"
	"github.com/eks-patterns/eksops/pkg/serializer"
)

type fakeRouter struct {
	got *events.SNSEvent
	sum *nodelog.Summary
	err error
}

func (f *fakeRouter) HandleSNSEvent(_ context.Context, e events.SNSEvent) (*nodelog.Summary, error) {
	f.got = &e
	return f.sum, f.err
}

func nodeLogTestFlags() []cli.Flag {
	return append([]cli.Flag{configFlag()}, nodelogFlags()...)
}

func TestNodeLogConfig_Flags(t *testing.T) {
	args := []string{
		"--cluster", "prod",
		"--cluster-region", "us-west-2",
		"--bucket", "logs",
		"--role-arn", "arn:aws:iam::123456789012:role/ssm",
		"--nodes-max", "3",
		"--bundle-recency-seconds", "600",
		"--executions-per-second", "0.5",
	}

	var cfg *config.NodeLog
	err := runCommand(t, nodeLogTestFlags(), args, func(_ context.Context, c *cli.Command) error {
		var err error
		cfg, err = nodeLogConfig(c)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.ClusterID)
	assert.Equal(t, "us-west-2", cfg.ClusterRegion)
	assert.Equal(t, "logs", cfg.Bucket)
	assert.Equal(t, 3, cfg.NodesMax)
	assert.Equal(t, 10*time.Minute, cfg.BundleRecency)
	assert.InDelta(t, 0.5, cfg.ExecutionsPerSecond, 1e-9)
	assert.Equal(t, defaults.SSMDocumentName, cfg.DocumentName)
}

func TestNodeLogConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
nodeLog:
  clusterId: from-file
  clusterRegion: eu-west-1
  bucket: file-logs
  automationRoleArn: arn:aws:iam::123456789012:role/ssm
  nodesMax: 7
`)

	var cfg *config.NodeLog
	err := runCommand(t, nodeLogTestFlags(), []string{"--config", path, "--cluster", "from-flag"},
		func(_ context.Context, c *cli.Command) error {
			var err error
			cfg, err = nodeLogConfig(c)
			return err
		})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.ClusterID)
	assert.Equal(t, "eu-west-1", cfg.ClusterRegion)
	assert.Equal(t, "file-logs", cfg.Bucket)
	assert.Equal(t, 7, cfg.NodesMax)
}

func TestNodeLogConfig_Missing(t *testing.T) {
	err := runCommand(t, nodeLogTestFlags(), []string{"--cluster", "prod"},
		func(_ context.Context, c *cli.Command) error {
			_, err := nodeLogConfig(c)
			return err
		})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
	assert.Contains(t, err.Error(), config.EnvBucket)
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name    string
		sum     *nodelog.Summary
		err     error
		wantErr bool
	}{
		{
			name: "handled",
			sum:  &nodelog.Summary{Received: 1, Handled: 1, Executions: map[string]string{"i-1": "e-1"}},
		},
		{
			name:    "partial failure still writes the summary",
			sum:     &nodelog.Summary{Received: 2, Handled: 1, Failed: 1, Executions: map[string]string{"i-1": "e-1"}},
			err:     errors.New(errors.ErrCodeThrottled, "ssm throttled"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "summary.json")
			r := &fakeRouter{sum: tt.sum, err: tt.err}
			event := &events.SNSEvent{Records: []events.SNSEventRecord{
				{SNS: events.SNSEntity{MessageID: "m-1", Message: `{"alerts":[]}`}},
			}}

			err := runCommand(t, []cli.Flag{outputFlag(), formatFlag(), &cli.StringFlag{Name: "region"}},
				[]string{"-o", out, "-t", "json"},
				func(ctx context.Context, c *cli.Command) error {
					return handleEvent(ctx, c, r, event)
				})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeThrottled, errors.CodeOf(err))
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, r.got)
			assert.Equal(t, "m-1", r.got.Records[0].SNS.MessageID)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			var got nodelog.Summary
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.sum.Handled, got.Handled)
			assert.Equal(t, tt.sum.Failed, got.Failed)
		})
	}
}

func TestHandleEvent_UnwritableOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "summary.json")
	r := &fakeRouter{sum: &nodelog.Summary{Received: 1, Handled: 1}}
	event := &events.SNSEvent{Records: []events.SNSEventRecord{{SNS: events.SNSEntity{MessageID: "m-2"}}}}

	err := runCommand(t, []cli.Flag{outputFlag(), formatFlag(), &cli.StringFlag{Name: "region"}},
		[]string{"-o", out, "-t", "json"},
		func(ctx context.Context, c *cli.Command) error {
			return handleEvent(ctx, c, r, event)
		})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
	assert.NoFileExists(t, out)
}

func TestHandleEvent_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	body := `{"Records":[{"EventSource":"aws:sns","Sns":{"MessageId":"m-9","Message":"{}"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	event, err := serializer.FromFile[events.SNSEvent](t.Context(), path)
	require.NoError(t, err)
	require.Len(t, event.Records, 1)
	assert.Equal(t, "m-9", event.Records[0].SNS.MessageID)
}
