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

package nodelog

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/eks-patterns/eksops/pkg/alert"
	"github.com/eks-patterns/eksops/pkg/bundle"
	"github.com/eks-patterns/eksops/pkg/errors"
	"github.com/eks-patterns/eksops/pkg/remediation"
)

// InstanceResolver maps node names to EC2 instance ids.
type InstanceResolver interface {
	Resolve(ctx context.Context, nodeNames []string) ([]string, error)
}

// RemediationStarter starts log collection on one instance.
type RemediationStarter interface {
	Start(ctx context.Context, instanceID string) (string, error)
}

// BundleLister reports recently uploaded log bundles.
type BundleLister interface {
	Recent(ctx context.Context, window time.Duration) ([]bundle.Object, error)
}

// NodeSource lists the names of not-ready cluster nodes, stopping once limit
// names were collected.
type NodeSource interface {
	ListNotReady(ctx context.Context, limit int) ([]string, error)
}

// Config holds the Router settings.
type Config struct {
	// ClusterID and ClusterRegion identify the cluster in log records.
	ClusterID     string
	ClusterRegion string
	// NodesMax caps the instances remediated for one fleet alert.
	NodesMax int
	// BundleRecency is the window in which existing bundles suppress fleet remediation.
	BundleRecency time.Duration
}

// Deps are the collaborators of a Router.
type Deps struct {
	Resolver InstanceResolver
	Trigger  RemediationStarter
	Bundles  BundleLister
	Nodes    NodeSource
}

// Router dispatches node not-ready alerts to the single node and fleet handlers.
type Router struct {
	cfg  Config
	deps Deps
}

// NewRouter validates its inputs and returns a Router.
func NewRouter(cfg Config, deps Deps) (*Router, error) {
	if deps.Resolver == nil || deps.Trigger == nil || deps.Bundles == nil || deps.Nodes == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "router requires resolver, trigger, bundles and nodes")
	}
	if cfg.NodesMax <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("nodes max must be positive, got %d", cfg.NodesMax))
	}
	return &Router{cfg: cfg, deps: deps}, nil
}

// Summary describes the outcome of one dispatch.
type Summary struct {
	Received int `json:"received" yaml:"received"`
	Handled  int `json:"handled" yaml:"handled"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Invalid  int `json:"invalid" yaml:"invalid"`
	Failed   int `json:"failed" yaml:"failed"`
	// Executions maps instance ids to automation execution ids.
	Executions map[string]string `json:"executions" yaml:"executions"`
	// Deduplicated is set when a fleet alert was skipped because of recent bundles.
	Deduplicated bool `json:"deduplicated" yaml:"deduplicated"`
}

func newSummary() *Summary {
	return &Summary{Executions: make(map[string]string)}
}

// HandleSNSEvent parses the alerts of every record and dispatches them.
func (r *Router) HandleSNSEvent(ctx context.Context, event events.SNSEvent) (*Summary, error) {
	alerts, err := alert.ParseSNSEvent(event)
	if err != nil {
		return newSummary(), err
	}
	return r.Dispatch(ctx, alerts)
}

// Dispatch handles each alert in order. Resolved and duplicate alerts are
// skipped, unknown alert names are counted as invalid. A failing alert does
// not stop the remaining ones; all failures are joined into the returned error.
func (r *Router) Dispatch(ctx context.Context, alerts []alert.Alert) (*Summary, error) {
	start := time.Now()
	defer func() {
		dispatchDuration.Observe(time.Since(start).Seconds())
	}()

	sum := newSummary()
	seen := make(map[string]struct{}, len(alerts))
	var errs []error

	for _, a := range alerts {
		sum.Received++
		name := a.Name()

		if !a.IsFiring() {
			sum.Skipped++
			alertsTotal.WithLabelValues(name, outcomeResolved).Inc()
			slog.Debug("resolved alert skipped", "alert", name, "node", a.Node())
			continue
		}

		key := a.Key()
		if _, dup := seen[key]; dup {
			sum.Skipped++
			alertsTotal.WithLabelValues(name, outcomeDup).Inc()
			slog.Debug("duplicate alert skipped", "alert", name, "key", key)
			continue
		}
		seen[key] = struct{}{}

		actx := remediation.ContextWithMessageID(ctx, a.MessageID)

		var err error
		switch name {
		case alert.NameNodeNotReady:
			err = r.handleSingle(actx, a.Node(), sum)
		case alert.NameNodeNotReadyMax:
			slog.Info("cluster has too many nodes in NotReady state",
				"cluster", r.cfg.ClusterID, "region", r.cfg.ClusterRegion, "max", r.cfg.NodesMax)
			err = r.handleFleet(actx, sum)
		default:
			sum.Invalid++
			alertsTotal.WithLabelValues(name, outcomeInvalid).Inc()
			slog.Error("invalid alert received, skipping", "alert", name)
			continue
		}

		if err != nil {
			sum.Failed++
			alertsTotal.WithLabelValues(name, outcomeFailed).Inc()
			slog.Error("alert handling failed", "alert", name, "node", a.Node(), "error", err)
			errs = append(errs, fmt.Errorf("alert %s: %w", name, err))
			continue
		}

		sum.Handled++
		alertsTotal.WithLabelValues(name, outcomeHandled).Inc()
	}

	return sum, stderrors.Join(errs...)
}

// handleSingle starts remediation on every instance backing node.
func (r *Router) handleSingle(ctx context.Context, node string, sum *Summary) error {
	if node == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "alert has no node label")
	}

	ids, err := r.deps.Resolver.Resolve(ctx, []string{node})
	if err != nil {
		return fmt.Errorf("failed to resolve node %s: %w", node, err)
	}
	if len(ids) == 0 {
		slog.Warn("no instance found for node", "node", node)
		return nil
	}

	return r.startAll(ctx, ids, sum)
}

// handleFleet remediates up to NodesMax not-ready nodes unless log bundles
// were uploaded within the recency window.
func (r *Router) handleFleet(ctx context.Context, sum *Summary) error {
	names, err := r.deps.Nodes.ListNotReady(ctx, r.cfg.NodesMax)
	if err != nil {
		return fmt.Errorf("failed to list not ready nodes: %w", err)
	}

	limit := min(r.cfg.NodesMax, len(names))
	names = names[:limit]
	if limit == 0 {
		slog.Info("no nodes in NotReady state", "cluster", r.cfg.ClusterID)
		return nil
	}

	ids, err := r.deps.Resolver.Resolve(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to resolve not ready nodes: %w", err)
	}
	slog.Info("found instances in NotReady state",
		"count", len(ids), "instances", strings.Join(ids, ", "))

	recent, err := r.deps.Bundles.Recent(ctx, r.cfg.BundleRecency)
	if err != nil {
		return fmt.Errorf("failed to list recent bundles: %w", err)
	}
	if len(recent) > 0 {
		sum.Deduplicated = true
		dedupSkips.Inc()
		slog.Info("log bundles already uploaded recently, skipping",
			"window", r.cfg.BundleRecency, "bundles", len(recent), "latest", recent[0].Key)
		return nil
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return r.startAll(ctx, ids, sum)
}

// startAll starts remediation for each instance not already started in this
// dispatch and joins the failures.
func (r *Router) startAll(ctx context.Context, ids []string, sum *Summary) error {
	var errs []error
	for _, id := range ids {
		if _, done := sum.Executions[id]; done {
			slog.Debug("instance already remediated in this batch", "instance", id)
			continue
		}

		execID, err := r.deps.Trigger.Start(ctx, id)
		if err != nil {
			executionsTotal.WithLabelValues("failed").Inc()
			errs = append(errs, err)
			continue
		}

		executionsTotal.WithLabelValues("started").Inc()
		sum.Executions[id] = execID
	}
	return stderrors.Join(errs...)
}
