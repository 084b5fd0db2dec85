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
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RegionOverride(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := Load(t.Context(), "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)

	cfg, err = Load(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestNew(t *testing.T) {
	c := New(aws.Config{Region: "us-west-2"})
	assert.NotNil(t, c.EC2)
	assert.NotNil(t, c.SSM)
	assert.NotNil(t, c.S3)
	assert.NotNil(t, c.EKS)
	assert.NotNil(t, c.STS)
	assert.NotNil(t, c.SNS)
	assert.Equal(t, "us-west-2", c.Config.Region)
}

func TestForRegion(t *testing.T) {
	base := aws.Config{Region: "us-west-2"}
	c := ForRegion(base, "ap-south-1")
	assert.Equal(t, "ap-south-1", c.Region)
	assert.Equal(t, "us-west-2", base.Region)
}
