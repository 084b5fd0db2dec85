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

package defaults

import "time"

// Remediation limits for the node log automation.
const (
	// SSMDocumentName is the AWS-owned automation document that collects
	// EKS node logs and uploads them to an S3 bucket.
	SSMDocumentName = "AWSSupport-CollectEKSInstanceLogs"

	// BundleRecency is the default trailing window in which an uploaded log
	// bundle suppresses new fleet-wide remediation.
	BundleRecency = 30 * time.Minute

	// NodesMax is the default cap on nodes remediated per fleet alert.
	NodesMax = 5

	// SSMExecutionsPerSecond paces StartAutomationExecution calls.
	SSMExecutionsPerSecond = 2.0

	// SSMExecutionsBurst is the burst allowed on top of the pace.
	SSMExecutionsBurst = 2

	// EC2FilterValuesMax is the largest number of values sent in one
	// DescribeInstances filter.
	EC2FilterValuesMax = 200
)

// Kubernetes timeouts and page sizes for cluster API calls.
const (
	// NodeListPageSize is the number of nodes requested per List call when
	// scanning for not ready nodes.
	NodeListPageSize int64 = 100

	// K8sListTimeout bounds a complete not ready scan.
	K8sListTimeout = 60 * time.Second

	// K8sClientTimeout is the per-request timeout set on the rest client.
	K8sClientTimeout = 15 * time.Second

	// EKSTokenPresignExpiry is the X-Amz-Expires value put on the presigned
	// GetCallerIdentity request.
	EKSTokenPresignExpiry = 60 * time.Second

	// EKSTokenLifetime is how long the API server accepts a token after it is
	// presigned. Tokens are reported as expiring one minute earlier.
	EKSTokenLifetime = 15 * time.Minute
)

// Handler timeouts for event processing.
const (
	// NodeLogHandlerTimeout bounds one alert batch when no deadline is given.
	NodeLogHandlerTimeout = 4 * time.Minute

	// DiscoveryTimeout bounds one discovery run when no deadline is given.
	DiscoveryTimeout = 10 * time.Minute

	// DiscoveryRegionTimeout bounds the cluster scan of a single region.
	DiscoveryRegionTimeout = 2 * time.Minute

	// DiscoveryConcurrency is the number of regions scanned at once.
	DiscoveryConcurrency = 4
)

// Server timeouts for the SNS HTTP endpoint.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// SNS gives up on an HTTP endpoint after 15 seconds and redelivers; alert
	// handling keeps running under NodeLogHandlerTimeout and repeated starts
	// reuse the SSM client token derived from the message id.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second

	// ServerMaxBodyBytes caps SNS notification bodies. SNS messages are at
	// most 256 KiB plus envelope.
	ServerMaxBodyBytes = 512 * 1024
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)
