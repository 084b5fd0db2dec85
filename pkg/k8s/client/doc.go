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

// Package client builds Kubernetes clients for eksops.
//
// Two sources are supported. BuildKubeClient and the GetKubeClient singleton
// discover a kubeconfig the usual way:
//   - explicit path argument
//   - KUBECONFIG environment variable
//   - ~/.kube/config
//   - in-cluster service account
//
// BuildEKSClient needs no file at all. It assembles an in-memory kubeconfig
// from an EKS cluster description (endpoint and CA bundle) and an IAM bearer
// token, which is how the Lambda handlers reach the cluster:
//
//	cluster, _ := eksClient.Describe(ctx, "prod")
//	token, _ := tokens.Token(ctx, "prod")
//	clientset, _, err := client.BuildEKSClient(cluster, token)
//
// ForEKSCluster performs those three steps in one call.
//
// For tests, use k8s.io/client-go/kubernetes/fake with the Interface alias.
package client
