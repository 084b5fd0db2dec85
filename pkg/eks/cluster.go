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

package eks

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/errors"
)

// Cluster is the subset of an EKS cluster description eksops needs.
type Cluster struct {
	Name            string            `json:"name" yaml:"name"`
	ARN             string            `json:"arn" yaml:"arn"`
	Endpoint        string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	CAData          []byte            `json:"-" yaml:"-"`
	Version         string            `json:"version" yaml:"version"`
	PlatformVersion string            `json:"platformVersion,omitempty" yaml:"platformVersion,omitempty"`
	Status          string            `json:"status" yaml:"status"`
	CreatedAt       time.Time         `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
	Tags            map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Client wraps the EKS API.
type Client struct {
	api awsclient.EKSAPI
}

// NewClient returns a Client backed by api.
func NewClient(api awsclient.EKSAPI) *Client {
	return &Client{api: api}
}

// Describe returns the cluster called name with its CA bundle decoded.
func (c *Client) Describe(ctx context.Context, name string) (*Cluster, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "cluster name is required")
	}

	out, err := c.api.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
	if err != nil {
		return nil, errors.FromAWS("eks:DescribeCluster", err)
	}
	if out.Cluster == nil {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound, "cluster not found",
			map[string]any{"cluster": name})
	}

	ec := out.Cluster
	cl := &Cluster{
		Name:            aws.ToString(ec.Name),
		ARN:             aws.ToString(ec.Arn),
		Endpoint:        aws.ToString(ec.Endpoint),
		Version:         aws.ToString(ec.Version),
		PlatformVersion: aws.ToString(ec.PlatformVersion),
		Status:          string(ec.Status),
		CreatedAt:       aws.ToTime(ec.CreatedAt),
		Tags:            ec.Tags,
	}

	if ec.CertificateAuthority != nil && ec.CertificateAuthority.Data != nil {
		ca, err := base64.StdEncoding.DecodeString(aws.ToString(ec.CertificateAuthority.Data))
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal,
				"failed to decode cluster certificate authority", err,
				map[string]any{"cluster": name})
		}
		cl.CAData = ca
	}

	slog.Debug("cluster described", "cluster", cl.Name, "version", cl.Version, "status", cl.Status)
	return cl, nil
}

// ListClusters returns the names of every cluster visible to the client.
func (c *Client) ListClusters(ctx context.Context) ([]string, error) {
	var names []string
	p := eks.NewListClustersPaginator(c.api, &eks.ListClustersInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.FromAWS("eks:ListClusters", err)
		}
		names = append(names, page.Clusters...)
	}
	return names, nil
}
