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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
	"k8s.io/client-go/util/homedir"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/eks"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in tests.
// This enables using fake.NewClientset() which returns kubernetes.Interface.
type Interface = kubernetes.Interface

const eksUserName = "aws"

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns a singleton Kubernetes client built with kubeconfig
// discovery, creating it on first call.
func GetKubeClient() (Interface, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("")
	})
	if clientErr != nil {
		return nil, nil, clientErr
	}
	return cachedClient, cachedConfig, nil
}

// BuildKubeClient creates a Kubernetes client from the given kubeconfig file.
//
// If kubeconfig is empty the path is discovered in this order:
//  1. KUBECONFIG environment variable
//  2. ~/.kube/config (if it exists)
//  3. In-cluster configuration (service account)
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	var config *rest.Config
	var err error

	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")

		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err = os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	// Use InClusterConfig directly when no kubeconfig is available
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// EKSKubeconfig returns an in-memory kubeconfig for cluster authenticated
// with a bearer token. The context is named after the cluster ARN.
func EKSKubeconfig(cluster *eks.Cluster, token eks.Token) *clientcmdapi.Config {
	contextName := cluster.ARN
	if contextName == "" {
		contextName = cluster.Name
	}

	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[cluster.Name] = &clientcmdapi.Cluster{
		Server:                   cluster.Endpoint,
		CertificateAuthorityData: cluster.CAData,
	}
	cfg.AuthInfos[eksUserName] = &clientcmdapi.AuthInfo{
		Token: token.Value,
	}
	cfg.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:  cluster.Name,
		AuthInfo: eksUserName,
	}
	cfg.CurrentContext = contextName
	return cfg
}

// BuildEKSClient creates a Kubernetes client for an EKS cluster from its
// description and a bearer token.
func BuildEKSClient(cluster *eks.Cluster, token eks.Token) (*kubernetes.Clientset, *rest.Config, error) {
	if cluster == nil || cluster.Endpoint == "" {
		return nil, nil, fmt.Errorf("cluster endpoint is required")
	}

	config, err := clientcmd.NewDefaultClientConfig(*EKSKubeconfig(cluster, token), &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build kube config for cluster %s: %w", cluster.Name, err)
	}
	config.Timeout = defaults.K8sClientTimeout

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// ClusterDescriber describes EKS clusters.
type ClusterDescriber interface {
	Describe(ctx context.Context, name string) (*eks.Cluster, error)
}

// TokenSource issues EKS bearer tokens.
type TokenSource interface {
	Token(ctx context.Context, clusterName string) (eks.Token, error)
}

// ForEKSCluster describes clusterName, issues a token for it and returns a
// client authenticated with that token.
func ForEKSCluster(ctx context.Context, describer ClusterDescriber, tokens TokenSource, clusterName string) (Interface, error) {
	cluster, err := describer.Describe(ctx, clusterName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe cluster %s: %w", clusterName, err)
	}

	token, err := tokens.Token(ctx, clusterName)
	if err != nil {
		return nil, fmt.Errorf("failed to get token for cluster %s: %w", clusterName, err)
	}

	cs, _, err := BuildEKSClient(cluster, token)
	if err != nil {
		return nil, err
	}
	return cs, nil
}
