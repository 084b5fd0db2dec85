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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/eks"
	"github.com/eks-patterns/eksops/pkg/k8s/client"
	"github.com/eks-patterns/eksops/pkg/serializer"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML config file with nodeLog and discovery sections",
		Sources: cli.EnvVars("EKSOPS_CONFIG"),
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path or s3://bucket/key (default: stdout)",
		Sources: cli.EnvVars("EKSOPS_OUTPUT"),
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Sources: cli.EnvVars("EKSOPS_FORMAT"),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "Path to kubeconfig (default: KUBECONFIG, ~/.kube/config, in-cluster)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

func eksClusterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "eks-cluster",
		Usage: "Reach this EKS cluster through the AWS API with IAM authentication instead of a kubeconfig",
	}
}

// parseOutputFormat validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, supported values: %v",
			cmd.String("format"), serializer.SupportedFormats())
	}
	return f, nil
}

// writeOutput serializes v to the --output destination in the --format
// encoding. An s3:// destination is uploaded with PutObject.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser, err := newOutputSerializer(ctx, cmd, format)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, v)
}

func newOutputSerializer(ctx context.Context, cmd *cli.Command, format serializer.Format) (serializer.Serializer, error) {
	out := strings.TrimSpace(cmd.String("output"))
	if !strings.HasPrefix(out, serializer.S3URIScheme) {
		w, err := serializer.NewFileWriterOrStdout(format, out)
		if err != nil {
			return nil, err
		}
		return w, nil
	}

	bucket, key, err := serializer.ParseS3URI(out)
	if err != nil {
		return nil, err
	}
	clients, err := newAWSClients(ctx, cmd.String("region"))
	if err != nil {
		return nil, err
	}
	return serializer.NewS3Writer(clients.S3, bucket, key, format), nil
}

// loadConfigFile reads --config, or returns defaults when it is not set.
func loadConfigFile(cmd *cli.Command) (*config.File, error) {
	path := cmd.String("config")
	if path == "" {
		return &config.File{
			NodeLog:   *config.NewNodeLog(),
			Discovery: *config.NewDiscovery(),
		}, nil
	}
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("config file loaded", "path", path)
	return f, nil
}

func newAWSClients(ctx context.Context, region string) (*awsclient.Clients, error) {
	cfg, err := awsclient.Load(ctx, region)
	if err != nil {
		return nil, err
	}
	return awsclient.New(cfg), nil
}

// kubeClient connects to the cluster named by --eks-cluster through EKS, or
// falls back to kubeconfig discovery.
func kubeClient(ctx context.Context, cmd *cli.Command) (client.Interface, error) {
	if cluster := cmd.String("eks-cluster"); cluster != "" {
		clients, err := newAWSClients(ctx, cmd.String("region"))
		if err != nil {
			return nil, err
		}
		return client.ForEKSCluster(ctx,
			eks.NewClient(clients.EKS),
			eks.NewTokenGeneratorFromClient(clients.STS),
			cluster)
	}

	cs, _, err := client.BuildKubeClient(cmd.String("kubeconfig"))
	if err != nil {
		return nil, err
	}
	return cs, nil
}
