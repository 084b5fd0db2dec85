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

package nodelog

import (
	"context"

	"github.com/eks-patterns/eksops/pkg/k8s/client"
	"github.com/eks-patterns/eksops/pkg/k8s/node"
)

// ClientNodeSource lists not-ready nodes through an existing client.
type ClientNodeSource struct {
	Client client.Interface
}

// ListNotReady implements NodeSource.
func (s *ClientNodeSource) ListNotReady(ctx context.Context, limit int) ([]string, error) {
	return node.ListNotReady(ctx, node.NotReadyOptions{Client: s.Client, Limit: limit})
}

// EKSNodeSource connects to an EKS cluster with a fresh IAM token on every
// call.
type EKSNodeSource struct {
	Cluster   string
	Describer client.ClusterDescriber
	Tokens    client.TokenSource
}

// ListNotReady implements NodeSource.
func (s *EKSNodeSource) ListNotReady(ctx context.Context, limit int) ([]string, error) {
	c, err := client.ForEKSCluster(ctx, s.Describer, s.Tokens, s.Cluster)
	if err != nil {
		return nil, err
	}
	return node.ListNotReady(ctx, node.NotReadyOptions{Client: c, Limit: limit})
}
