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

// Package defaults provides centralized configuration constants for eksops.
//
// This package defines timeout values, page sizes and remediation limits used
// across the codebase. Centralizing these values keeps the Lambda handlers,
// the SNS endpoint and the CLI consistent.
//
// # Categories
//
//   - Remediation limits: SSM document, recency window, node cap, pacing
//   - Kubernetes: page size, list and client timeouts, EKS token timing
//   - Handler timeouts: alert batches and discovery runs
//   - Server timeouts: SNS HTTP endpoint
//   - HTTP client timeouts: outbound requests such as subscription confirmation
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.K8sListTimeout)
//	defer cancel()
package defaults
