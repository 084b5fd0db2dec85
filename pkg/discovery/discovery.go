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

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/sync/errgroup"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/eks"
	"github.com/eks-patterns/eksops/pkg/errors"
	"github.com/eks-patterns/eksops/pkg/serializer"
)

// Config controls one discovery run.
type Config struct {
	TopicARN    string
	Bucket      string
	Regions     []string
	Concurrency int
	Format      serializer.Format
	// ReportOnly builds reports with Collect only. Bucket and TopicARN are
	// not required and Run is refused.
	ReportOnly bool
}

// Deps are the AWS APIs a Discoverer calls. EKS returns a client pinned to
// the given region.
type Deps struct {
	STS awsclient.STSAPI
	EC2 awsclient.EC2API
	S3  serializer.ObjectPutter
	SNS awsclient.SNSAPI
	EKS func(region string) awsclient.EKSAPI
}

// Result summarizes a run.
type Result struct {
	AccountID    string `json:"accountId" yaml:"accountId"`
	Regions      int    `json:"regions" yaml:"regions"`
	Clusters     int    `json:"clusters" yaml:"clusters"`
	RegionErrors int    `json:"regionErrors" yaml:"regionErrors"`
	Key          string `json:"key,omitempty" yaml:"key,omitempty"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`
	MessageID    string `json:"messageId,omitempty" yaml:"messageId,omitempty"`
}

// Message is the human-readable outcome returned by the Lambda.
func (r *Result) Message() string {
	if r.Clusters == 0 {
		return fmt.Sprintf("EKS cluster discovery complete. Scanned %d region(s). No EKS clusters found.", r.Regions)
	}
	return fmt.Sprintf("EKS cluster discovery complete. Scanned %d region(s). Found %d EKS cluster(s). Report: %s",
		r.Regions, r.Clusters, r.URL)
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithClock overrides the time source used for report timestamps and keys.
func WithClock(now func() time.Time) Option {
	return func(d *Discoverer) {
		if now != nil {
			d.now = now
		}
	}
}

// WithToolVersion records the producing binary version in the report header.
func WithToolVersion(v string) Option {
	return func(d *Discoverer) {
		d.toolVersion = v
	}
}

// Discoverer enumerates EKS clusters in every enabled region of the current
// account and publishes a report.
type Discoverer struct {
	cfg         Config
	deps        Deps
	now         func() time.Time
	toolVersion string
}

// New validates cfg and deps and returns a Discoverer.
func New(cfg Config, deps Deps, opts ...Option) (*Discoverer, error) {
	if deps.STS == nil || deps.EC2 == nil || deps.S3 == nil || deps.SNS == nil || deps.EKS == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "discovery requires STS, EC2, S3, SNS and EKS clients")
	}
	if !cfg.ReportOnly && (cfg.Bucket == "" || cfg.TopicARN == "") {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "discovery requires a bucket and a topic ARN")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.DiscoveryConcurrency
	}
	if cfg.Format != serializer.FormatYAML {
		cfg.Format = serializer.FormatJSON
	}

	d := &Discoverer{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run performs a full scan, uploads the report and sends the notification.
// When no clusters are found nothing is uploaded or published.
func (d *Discoverer) Run(ctx context.Context) (*Result, error) {
	if d.cfg.ReportOnly {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "discoverer is configured for reports only")
	}

	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	account, regions, clusters, regionErrs, err := d.collect(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		AccountID:    account,
		Regions:      len(regions),
		Clusters:     len(clusters),
		RegionErrors: len(regionErrs),
	}
	if len(clusters) == 0 {
		slog.Info("no EKS clusters found", "account", account, "regions", len(regions))
		return res, nil
	}

	at := d.now()
	report := BuildReport(account, regions, clusters, regionErrs, d.toolVersion, at)
	res.Key = ObjectKey(account, at, d.cfg.Format)
	res.URL = ObjectURL(d.cfg.Bucket, res.Key)

	w := serializer.NewS3Writer(d.deps.S3, d.cfg.Bucket, res.Key, d.cfg.Format)
	if err := w.Serialize(ctx, report); err != nil {
		return res, err
	}

	out, err := d.deps.SNS.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.cfg.TopicARN),
		Subject:  aws.String(Subject),
		Message:  aws.String(notificationMessage(res.URL)),
	})
	if err != nil {
		return res, fmt.Errorf("notify %s: %w", d.cfg.TopicARN, errors.FromAWS("sns:Publish", err))
	}
	res.MessageID = aws.ToString(out.MessageId)

	slog.Info("cluster report published",
		"account", account,
		"clusters", res.Clusters,
		"regionErrors", res.RegionErrors,
		"url", res.URL,
		"messageId", res.MessageID)
	return res, nil
}

// Collect scans the account and returns the report without uploading or
// publishing it.
func (d *Discoverer) Collect(ctx context.Context) (*Report, error) {
	account, regions, clusters, regionErrs, err := d.collect(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(account, regions, clusters, regionErrs, d.toolVersion, d.now()), nil
}

func (d *Discoverer) collect(ctx context.Context) (string, []string, []ClusterInfo, []RegionError, error) {
	account, err := d.Account(ctx)
	if err != nil {
		return "", nil, nil, nil, err
	}

	regions, err := d.Regions(ctx)
	if err != nil {
		return "", nil, nil, nil, err
	}

	clusters, regionErrs, err := d.Scan(ctx, account, regions)
	if err != nil {
		return "", nil, nil, nil, err
	}
	clustersFound.Set(float64(len(clusters)))
	return account, regions, clusters, regionErrs, nil
}

// Account returns the id of the account the credentials belong to.
func (d *Discoverer) Account(ctx context.Context) (string, error) {
	out, err := d.deps.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", errors.FromAWS("sts:GetCallerIdentity", err)
	}
	account := aws.ToString(out.Account)
	if account == "" {
		return "", errors.New(errors.ErrCodeInternal, "caller identity has no account id")
	}
	return account, nil
}

// Regions returns the enabled regions, narrowed to the configured allow-list
// when one is set. The result is sorted.
func (d *Discoverer) Regions(ctx context.Context) ([]string, error) {
	out, err := d.deps.EC2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, errors.FromAWS("ec2:DescribeRegions", err)
	}

	enabled := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if name := aws.ToString(r.RegionName); name != "" {
			enabled = append(enabled, name)
		}
	}
	slices.Sort(enabled)

	if len(d.cfg.Regions) == 0 {
		return enabled, nil
	}

	var regions []string
	for _, want := range d.cfg.Regions {
		if !slices.Contains(enabled, want) {
			slog.Warn("configured region is not enabled, skipping", "region", want)
			continue
		}
		if !slices.Contains(regions, want) {
			regions = append(regions, want)
		}
	}
	slices.Sort(regions)
	return regions, nil
}

// Scan lists and describes clusters in every region, at most Concurrency
// regions at a time. Region failures are returned as RegionErrors; only
// cancellation of ctx fails the scan.
func (d *Discoverer) Scan(ctx context.Context, account string, regions []string) ([]ClusterInfo, []RegionError, error) {
	type regionResult struct {
		clusters []ClusterInfo
		errs     []RegionError
	}
	results := make([]regionResult, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)

	for i, region := range regions {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, defaults.DiscoveryRegionTimeout)
			defer cancel()

			clusters, errs := d.scanRegion(rctx, account, region)
			results[i] = regionResult{clusters: clusters, errs: errs}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeTimeout, "discovery scan interrupted", err)
	}

	var clusters []ClusterInfo
	var regionErrs []RegionError
	for _, r := range results {
		clusters = append(clusters, r.clusters...)
		regionErrs = append(regionErrs, r.errs...)
	}
	return clusters, regionErrs, nil
}

func (d *Discoverer) scanRegion(ctx context.Context, account, region string) ([]ClusterInfo, []RegionError) {
	client := eks.NewClient(d.deps.EKS(region))

	names, err := client.ListClusters(ctx)
	if err != nil {
		slog.Error("failed to list clusters", "region", region, "error", err)
		regionErrorsTotal.WithLabelValues(region).Inc()
		return nil, []RegionError{newRegionError(region, "", err)}
	}

	var clusters []ClusterInfo
	var errs []RegionError
	for _, name := range names {
		c, err := client.Describe(ctx, name)
		if err != nil {
			slog.Error("failed to describe cluster", "region", region, "cluster", name, "error", err)
			regionErrorsTotal.WithLabelValues(region).Inc()
			errs = append(errs, newRegionError(region, name, err))
			continue
		}
		clusters = append(clusters, ClusterInfo{
			AccountID:       account,
			Region:          region,
			Name:            c.Name,
			ARN:             c.ARN,
			Version:         c.Version,
			PlatformVersion: c.PlatformVersion,
			Status:          c.Status,
			CreatedAt:       c.CreatedAt,
			Tags:            c.Tags,
		})
	}

	slog.Info("region scanned", "region", region, "clusters", len(clusters))
	return clusters, errs
}

func newRegionError(region, cluster string, err error) RegionError {
	return RegionError{
		Region:  region,
		Cluster: cluster,
		Code:    string(errors.CodeOf(err)),
		Message: err.Error(),
	}
}
