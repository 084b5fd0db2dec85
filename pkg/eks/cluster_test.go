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
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eks-patterns/eksops/pkg/awsclient/mock"
	"github.com/eks-patterns/eksops/pkg/errors"
)

func TestDescribe(t *testing.T) {
	ca := []byte("-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----\n")
	m := &mock.EKS{
		DescribeClusterFunc: func(_ context.Context, in *eks.DescribeClusterInput, _ ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
			assert.Equal(t, "prod", aws.ToString(in.Name))
			return &eks.DescribeClusterOutput{Cluster: &types.Cluster{
				Name:                 aws.String("prod"),
				Arn:                  aws.String("arn:aws:eks:us-west-2:111122223333:cluster/prod"),
				Endpoint:             aws.String("https://ABC.gr7.us-west-2.eks.amazonaws.com"),
				Version:              aws.String("1.31"),
				Status:               types.ClusterStatusActive,
				CertificateAuthority: &types.Certificate{Data: aws.String(base64.StdEncoding.EncodeToString(ca))},
				Tags:                 map[string]string{"team": "platform"},
			}}, nil
		},
	}

	cl, err := NewClient(m).Describe(t.Context(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", cl.Name)
	assert.Equal(t, "1.31", cl.Version)
	assert.Equal(t, "ACTIVE", cl.Status)
	assert.Equal(t, ca, cl.CAData)
	assert.Equal(t, "platform", cl.Tags["team"])
}

func TestDescribe_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cluster string
		out     *eks.DescribeClusterOutput
		err     error
		code    errors.ErrorCode
	}{
		{name: "empty name", cluster: "", code: errors.ErrCodeInvalidRequest},
		{name: "not found", cluster: "x", err: &smithy.GenericAPIError{Code: "ResourceNotFoundException"}, code: errors.ErrCodeNotFound},
		{name: "nil cluster", cluster: "x", out: &eks.DescribeClusterOutput{}, code: errors.ErrCodeNotFound},
		{
			name:    "bad ca",
			cluster: "x",
			out: &eks.DescribeClusterOutput{Cluster: &types.Cluster{
				CertificateAuthority: &types.Certificate{Data: aws.String("%%%")},
			}},
			code: errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mock.EKS{
				DescribeClusterFunc: func(context.Context, *eks.DescribeClusterInput, ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
					return tt.out, tt.err
				},
			}
			_, err := NewClient(m).Describe(t.Context(), tt.cluster)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestListClusters(t *testing.T) {
	m := &mock.EKS{
		ListClustersFunc: func(_ context.Context, in *eks.ListClustersInput, _ ...func(*eks.Options)) (*eks.ListClustersOutput, error) {
			if in.NextToken == nil {
				return &eks.ListClustersOutput{Clusters: []string{"a", "b"}, NextToken: aws.String("t")}, nil
			}
			return &eks.ListClustersOutput{Clusters: []string{"c"}}, nil
		},
	}
	names, err := NewClient(m).ListClusters(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestListClusters_Error(t *testing.T) {
	m := &mock.EKS{
		ListClustersFunc: func(context.Context, *eks.ListClustersInput, ...func(*eks.Options)) (*eks.ListClustersOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "AccessDeniedException"}
		},
	}
	_, err := NewClient(m).ListClusters(t.Context())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))
}
