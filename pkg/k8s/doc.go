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


// Package k8s groups the Kubernetes side of the cluster API adapter.
//
// # Sub-packages
//
// client: Kubernetes clients from kubeconfig discovery or from an EKS
// cluster description plus an IAM bearer token
//
//	cs, _, err := client.BuildKubeClient("")
//
//	cs, err := client.ForEKSCluster(ctx, eks.NewClient(eksAPI), tokens, "prod")
//
// node: paginated node listing, not ready detection and single node lookup
//
//	names, err := node.ListNotReady(ctx, node.NotReadyOptions{Client: cs, Limit: 5})
//	info, err := node.GetInfo(ctx, cs, "ip-10-0-1-23.us-west-2.compute.internal")
//
// # Authentication
//
// Outside a cluster, client.BuildKubeClient reads KUBECONFIG or
// ~/.kube/config and falls back to the in-cluster service account. The node
// log automation never has a kubeconfig: it describes the cluster through
// the EKS API and authenticates with a presigned STS token, see pkg/eks.
package k8s
