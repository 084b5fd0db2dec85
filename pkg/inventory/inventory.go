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

package inventory

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
)

const filterPrivateDNSName = "private-dns-name"

// Resolver maps Kubernetes node names to EC2 instance ids.
type Resolver struct {
	client    awsclient.EC2API
	chunkSize int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithChunkSize sets how many node names are sent per filter. Values outside
// (0, EC2FilterValuesMax] are ignored.
func WithChunkSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 && n <= defaults.EC2FilterValuesMax {
			r.chunkSize = n
		}
	}
}

// NewResolver returns a Resolver backed by client.
func NewResolver(client awsclient.EC2API, opts ...Option) *Resolver {
	r := &Resolver{
		client:    client,
		chunkSize: defaults.EC2FilterValuesMax,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the ids of instances whose private DNS name matches one of
// nodeNames, in response order and without duplicates. Node names that match
// no instance are silently dropped.
func (r *Resolver) Resolve(ctx context.Context, nodeNames []string) ([]string, error) {
	if len(nodeNames) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var ids []string

	for start := 0; start < len(nodeNames); start += r.chunkSize {
		end := min(start+r.chunkSize, len(nodeNames))

		input := &ec2.DescribeInstancesInput{
			Filters: []types.Filter{{
				Name:   aws.String(filterPrivateDNSName),
				Values: nodeNames[start:end],
			}},
		}

		p := ec2.NewDescribeInstancesPaginator(r.client, input)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, errors.FromAWS("ec2:DescribeInstances", err)
			}
			for _, res := range page.Reservations {
				for _, inst := range res.Instances {
					id := aws.ToString(inst.InstanceId)
					if id == "" {
						continue
					}
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	}

	slog.Debug("resolved node instances", "nodes", len(nodeNames), "instances", len(ids))
	return ids, nil
}
