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

package awsclient

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/eks-patterns/eksops/pkg/defaults"
)

// Load resolves the default AWS configuration chain (environment, shared
// config, web identity, container and instance roles). A non-empty region
// overrides the resolved one.
func Load(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(newHTTPClient()),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	slog.Debug("aws configuration loaded", "region", cfg.Region)
	return cfg, nil
}

func newHTTPClient() *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(defaults.HTTPClientTimeout).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = defaults.HTTPConnectTimeout
			d.KeepAlive = defaults.HTTPKeepAlive
		}).
		WithTransportOptions(func(t *http.Transport) {
			t.TLSHandshakeTimeout = defaults.HTTPTLSHandshakeTimeout
			t.ResponseHeaderTimeout = defaults.HTTPResponseHeaderTimeout
			t.IdleConnTimeout = defaults.HTTPIdleConnTimeout
		})
}

// Clients bundles the service clients built from one configuration.
type Clients struct {
	Config aws.Config
	EC2    *ec2.Client
	SSM    *ssm.Client
	S3     *s3.Client
	EKS    *eks.Client
	STS    *sts.Client
	SNS    *sns.Client
}

// New builds every service client from cfg.
func New(cfg aws.Config) *Clients {
	return &Clients{
		Config: cfg,
		EC2:    ec2.NewFromConfig(cfg),
		SSM:    ssm.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
		EKS:    eks.NewFromConfig(cfg),
		STS:    sts.NewFromConfig(cfg),
		SNS:    sns.NewFromConfig(cfg),
	}
}

// ForRegion returns a copy of cfg pinned to region.
func ForRegion(cfg aws.Config, region string) aws.Config {
	c := cfg.Copy()
	c.Region = region
	return c
}
