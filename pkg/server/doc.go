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

// Package server provides the HTTP endpoint for SNS subscriptions.
//
// The server accepts SNS HTTP(S) deliveries on POST /sns:
//
//   - SubscriptionConfirmation: the SubscribeURL is fetched to confirm the
//     subscription. Only https URLs on sns.<region>.amazonaws.com hosts are
//     followed.
//   - Notification: the message is turned into an SNS event and passed to the
//     configured EventHandler, normally the node log router.
//   - UnsubscribeConfirmation: logged and acknowledged.
//
// Message signatures (versions 1 and 2) are verified against the signing
// certificate unless disabled. A topic ARN can restrict which topic is
// accepted.
//
// # Endpoints
//
//	GET  /         server name, version and routes
//	GET  /health   liveness
//	GET  /ready    readiness
//	GET  /metrics  Prometheus metrics
//	POST /sns      SNS deliveries
//
// # Middleware
//
// /sns and custom handlers run through, outermost first: metrics, request
// id, panic recovery, rate limiting and request logging.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("eksops"),
//	    server.WithVersion(version),
//	    server.WithEventHandler(router),
//	)
//	err := s.Run(ctx)
//
// # Configuration
//
// PORT, SHUTDOWN_TIMEOUT_SECONDS and NODELOG_TOPIC_ARN override the defaults
// returned by NewConfig.
//
// # Status codes
//
// A notification whose alerts were all handled, or only partly failed, gets
// 200 with the router summary. A notification where nothing started and some
// alert failed gets 503 so SNS redelivers it. Malformed alert payloads get
// 400.
package server
