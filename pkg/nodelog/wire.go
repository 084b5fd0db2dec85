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
	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/bundle"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/eks"
	"github.com/eks-patterns/eksops/pkg/inventory"
	"github.com/eks-patterns/eksops/pkg/remediation"
)

// NewFromConfig wires a Router against AWS. When nodes is nil the cluster
// named in cfg is reached through EKS with IAM token authentication.
func NewFromConfig(cfg *config.NodeLog, clients *awsclient.Clients, nodes NodeSource) (*Router, error) {
	if nodes == nil {
		nodes = &EKSNodeSource{
			Cluster:   cfg.ClusterID,
			Describer: eks.NewClient(clients.EKS),
			Tokens:    eks.NewTokenGeneratorFromClient(clients.STS),
		}
	}

	return NewRouter(
		Config{
			ClusterID:     cfg.ClusterID,
			ClusterRegion: cfg.ClusterRegion,
			NodesMax:      cfg.NodesMax,
			BundleRecency: cfg.BundleRecency,
		},
		Deps{
			Resolver: inventory.NewResolver(clients.EC2),
			Trigger: remediation.NewTrigger(clients.SSM, cfg.Bucket, cfg.AutomationRoleARN,
				remediation.WithDocument(cfg.DocumentName),
				remediation.WithRate(cfg.ExecutionsPerSecond, defaults.SSMExecutionsBurst)),
			Bundles: bundle.NewGuard(clients.S3, cfg.Bucket, bundle.WithPrefix(cfg.BucketPrefix)),
			Nodes:   nodes,
		},
	)
}
