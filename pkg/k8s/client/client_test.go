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

package client

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/eks"
)

func resetSingleton() {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
}

func TestBuildKubeClient_PathResolution(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
	}{
		{name: "explicit invalid path", kubeconfigArg: "/nonexistent/path/to/kubeconfig"},
		{name: "env var with invalid path", kubeconfigEnv: "/nonexistent/env/kubeconfig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.kubeconfigEnv)

			_, _, err := BuildKubeClient(tt.kubeconfigArg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to build kube config")
		})
	}
}

func TestBuildKubeClient_InvalidFile(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid-kubeconfig")
	require.NoError(t, os.WriteFile(invalid, []byte("invalid yaml content"), 0o600))

	_, _, err := BuildKubeClient(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build kube config")
}

func TestBuildKubeClient_ValidFile(t *testing.T) {
	kubeconfig := `apiVersion: v1
kind: Config
clusters:
- name: local
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: local
  context:
    cluster: local
    user: dev
current-context: local
users:
- name: dev
  user:
    token: abc
`
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(kubeconfig), 0o600))

	cs, cfg, err := BuildKubeClient(path)
	require.NoError(t, err)
	assert.NotNil(t, cs)
	assert.Equal(t, "https://127.0.0.1:6443", cfg.Host)
	assert.Equal(t, "abc", cfg.BearerToken)
}

func TestGetKubeClient_Singleton(t *testing.T) {
	resetSingleton()
	defer resetSingleton()
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	c1, cfg1, err1 := GetKubeClient()
	c2, cfg2, err2 := GetKubeClient()

	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.Nil(t, c1)
	assert.Nil(t, c2)
	assert.Nil(t, cfg1)
	assert.Nil(t, cfg2)
}

var testCA = func() []byte {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "kubernetes"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		panic(err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}()

func testCluster() *eks.Cluster {
	return &eks.Cluster{
		Name:     "prod",
		ARN:      "arn:aws:eks:us-west-2:111122223333:cluster/prod",
		Endpoint: "https://ABC.gr7.us-west-2.eks.amazonaws.com",
		CAData:   testCA,
	}
}

func TestEKSKubeconfig(t *testing.T) {
	cfg := EKSKubeconfig(testCluster(), eks.Token{Value: "k8s-aws-v1.abc"})

	assert.Equal(t, "arn:aws:eks:us-west-2:111122223333:cluster/prod", cfg.CurrentContext)
	require.Contains(t, cfg.Clusters, "prod")
	assert.Equal(t, "https://ABC.gr7.us-west-2.eks.amazonaws.com", cfg.Clusters["prod"].Server)
	assert.Equal(t, testCA, cfg.Clusters["prod"].CertificateAuthorityData)
	require.Contains(t, cfg.AuthInfos, "aws")
	assert.Equal(t, "k8s-aws-v1.abc", cfg.AuthInfos["aws"].Token)

	ctx := cfg.Contexts[cfg.CurrentContext]
	require.NotNil(t, ctx)
	assert.Equal(t, "prod", ctx.Cluster)
	assert.Equal(t, "aws", ctx.AuthInfo)
}

func TestEKSKubeconfig_NoARN(t *testing.T) {
	cl := testCluster()
	cl.ARN = ""
	cfg := EKSKubeconfig(cl, eks.Token{})
	assert.Equal(t, "prod", cfg.CurrentContext)
}

func TestBuildEKSClient(t *testing.T) {
	cs, cfg, err := BuildEKSClient(testCluster(), eks.Token{Value: "tok"})
	require.NoError(t, err)
	assert.NotNil(t, cs)
	assert.Equal(t, "https://ABC.gr7.us-west-2.eks.amazonaws.com", cfg.Host)
	assert.Equal(t, "tok", cfg.BearerToken)
	assert.Equal(t, testCA, cfg.CAData)
	assert.Equal(t, defaults.K8sClientTimeout, cfg.Timeout)

	_, _, err = BuildEKSClient(&eks.Cluster{Name: "x"}, eks.Token{})
	require.Error(t, err)
	_, _, err = BuildEKSClient(nil, eks.Token{})
	require.Error(t, err)
}

type stubDescriber struct {
	cluster *eks.Cluster
	err     error
}

func (s stubDescriber) Describe(context.Context, string) (*eks.Cluster, error) {
	return s.cluster, s.err
}

type stubTokens struct {
	err error
}

func (s stubTokens) Token(_ context.Context, name string) (eks.Token, error) {
	return eks.Token{Value: "tok-" + name}, s.err
}

func TestForEKSCluster(t *testing.T) {
	c, err := ForEKSCluster(t.Context(), stubDescriber{cluster: testCluster()}, stubTokens{}, "prod")
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = ForEKSCluster(t.Context(), stubDescriber{err: fmt.Errorf("denied")}, stubTokens{}, "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to describe cluster prod")

	_, err = ForEKSCluster(t.Context(), stubDescriber{cluster: testCluster()}, stubTokens{err: fmt.Errorf("no creds")}, "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get token")
}
