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


package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/discovery"
	"github.com/eks-patterns/eksops/pkg/nodelog"
)

// EventRouter handles a batch of SNS alert records.
type EventRouter interface {
	HandleSNSEvent(ctx context.Context, event events.SNSEvent) (*nodelog.Summary, error)
}

// Runner runs one discovery pass.
type Runner interface {
	Run(ctx context.Context) (*discovery.Result, error)
}

// NodeLogFunc is the Lambda signature of the node log handler.
type NodeLogFunc func(ctx context.Context, event events.SNSEvent) (*nodelog.Summary, error)

// DiscoveryFunc is the Lambda signature of the discovery handler.
type DiscoveryFunc func(ctx context.Context, event events.CloudWatchEvent) (*discovery.Result, error)

// NodeLog returns a Lambda handler that routes SNS alerts through r.
//
// Failures are logged and counted in the summary. The handler never returns
// an error, so SNS does not redeliver a batch that already started automations.
func NodeLog(r EventRouter) NodeLogFunc {
	return func(ctx context.Context, event events.SNSEvent) (*nodelog.Summary, error) {
		ctx, cancel := withDefaultTimeout(ctx, defaults.NodeLogHandlerTimeout)
		defer cancel()

		logger := requestLogger(ctx)
		logger.Info("alert batch received", "records", len(event.Records))

		sum, err := r.HandleSNSEvent(ctx, event)
		if sum == nil {
			sum = &nodelog.Summary{Received: len(event.Records), Executions: map[string]string{}}
		}
		if err != nil {
			logger.Error("alert batch handled with errors",
				"error", err,
				"handled", sum.Handled,
				"failed", sum.Failed,
				"invalid", sum.Invalid)
			return sum, nil
		}

		logger.Info("alert batch handled",
			"handled", sum.Handled,
			"skipped", sum.Skipped,
			"executions", len(sum.Executions),
			"deduplicated", sum.Deduplicated)
		return sum, nil
	}
}

// Discovery returns a Lambda handler for the scheduled discovery run.
// Failures are returned so the invocation is recorded as failed.
func Discovery(d Runner) DiscoveryFunc {
	return func(ctx context.Context, event events.CloudWatchEvent) (*discovery.Result, error) {
		ctx, cancel := withDefaultTimeout(ctx, defaults.DiscoveryTimeout)
		defer cancel()

		logger := requestLogger(ctx)
		logger.Info("discovery triggered", "source", event.Source, "eventId", event.ID)

		res, err := d.Run(ctx)
		if err != nil {
			logger.Error("discovery failed", "error", err)
			return nil, err
		}

		logger.Info(res.Message(),
			"regions", res.Regions,
			"clusters", res.Clusters,
			"regionErrors", res.RegionErrors,
			"url", res.URL)
		return res, nil
	}
}

func requestLogger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("aws_request_id", lc.AwsRequestID)
	}
	return logger
}

// withDefaultTimeout bounds ctx only when the caller set no deadline.
func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
