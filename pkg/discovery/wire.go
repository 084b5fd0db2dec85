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

package discovery

import (
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/serializer"
)

// NewFromConfig wires a Discoverer against AWS.
func NewFromConfig(cfg *config.Discovery, clients *awsclient.Clients, opts ...Option) (*Discoverer, error) {
	return New(
		Config{
			TopicARN:    cfg.TopicARN,
			Bucket:      cfg.Bucket,
			Regions:     cfg.Regions,
			Concurrency: cfg.Concurrency,
			Format:      serializer.Format(cfg.ReportFormat),
		},
		DepsFromClients(clients),
		opts...,
	)
}

// DepsFromClients returns Deps backed by clients. EKS clients are created
// per region from the shared configuration.
func DepsFromClients(clients *awsclient.Clients) Deps {
	return Deps{
		STS: clients.STS,
		EC2: clients.EC2,
		S3:  clients.S3,
		SNS: clients.SNS,
		EKS: func(region string) awsclient.EKSAPI {
			return eks.NewFromConfig(awsclient.ForRegion(clients.Config, region))
		},
	}
}
