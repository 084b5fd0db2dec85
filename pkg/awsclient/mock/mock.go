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

// Package mock provides function-field fakes of the awsclient API interfaces
// for tests. A nil function field returns an empty output and no error.
package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/eks-patterns/eksops/pkg/awsclient"
)

var (
	_ awsclient.EC2API = (*EC2)(nil)
	_ awsclient.SSMAPI = (*SSM)(nil)
	_ awsclient.S3API  = (*S3)(nil)
	_ awsclient.EKSAPI = (*EKS)(nil)
	_ awsclient.STSAPI = (*STS)(nil)
	_ awsclient.SNSAPI = (*SNS)(nil)
)

// EC2 fakes awsclient.EC2API.
type EC2 struct {
	DescribeInstancesFunc func(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeRegionsFunc   func(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// DescribeInstances calls DescribeInstancesFunc.
func (m *EC2) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if m.DescribeInstancesFunc != nil {
		return m.DescribeInstancesFunc(ctx, in, optFns...)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

// DescribeRegions calls DescribeRegionsFunc.
func (m *EC2) DescribeRegions(ctx context.Context, in *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if m.DescribeRegionsFunc != nil {
		return m.DescribeRegionsFunc(ctx, in, optFns...)
	}
	return &ec2.DescribeRegionsOutput{}, nil
}

// SSM fakes awsclient.SSMAPI.
type SSM struct {
	StartAutomationExecutionFunc func(context.Context, *ssm.StartAutomationExecutionInput, ...func(*ssm.Options)) (*ssm.StartAutomationExecutionOutput, error)
}

// StartAutomationExecution calls StartAutomationExecutionFunc.
func (m *SSM) StartAutomationExecution(ctx context.Context, in *ssm.StartAutomationExecutionInput, optFns ...func(*ssm.Options)) (*ssm.StartAutomationExecutionOutput, error) {
	if m.StartAutomationExecutionFunc != nil {
		return m.StartAutomationExecutionFunc(ctx, in, optFns...)
	}
	return &ssm.StartAutomationExecutionOutput{}, nil
}

// S3 fakes awsclient.S3API.
type S3 struct {
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObjectFunc     func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ListObjectsV2 calls ListObjectsV2Func.
func (m *S3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(ctx, in, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

// PutObject calls PutObjectFunc.
func (m *S3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, in, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// EKS fakes awsclient.EKSAPI.
type EKS struct {
	ListClustersFunc    func(context.Context, *eks.ListClustersInput, ...func(*eks.Options)) (*eks.ListClustersOutput, error)
	DescribeClusterFunc func(context.Context, *eks.DescribeClusterInput, ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

// ListClusters calls ListClustersFunc.
func (m *EKS) ListClusters(ctx context.Context, in *eks.ListClustersInput, optFns ...func(*eks.Options)) (*eks.ListClustersOutput, error) {
	if m.ListClustersFunc != nil {
		return m.ListClustersFunc(ctx, in, optFns...)
	}
	return &eks.ListClustersOutput{}, nil
}

// DescribeCluster calls DescribeClusterFunc.
func (m *EKS) DescribeCluster(ctx context.Context, in *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
	if m.DescribeClusterFunc != nil {
		return m.DescribeClusterFunc(ctx, in, optFns...)
	}
	return &eks.DescribeClusterOutput{}, nil
}

// STS fakes awsclient.STSAPI.
type STS struct {
	GetCallerIdentityFunc func(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// GetCallerIdentity calls GetCallerIdentityFunc.
func (m *STS) GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if m.GetCallerIdentityFunc != nil {
		return m.GetCallerIdentityFunc(ctx, in, optFns...)
	}
	return &sts.GetCallerIdentityOutput{}, nil
}

// SNS fakes awsclient.SNSAPI.
type SNS struct {
	PublishFunc func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publish calls PublishFunc.
func (m *SNS) Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, in, optFns...)
	}
	return &sns.PublishOutput{}, nil
}
