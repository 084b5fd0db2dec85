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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
)

// Environment variable names read by the node log automation.
const (
	EnvClusterID             = "CLUSTER_ID"
	EnvClusterRegion         = "CLUSTER_REGION"
	EnvBundleRecencySeconds  = "BUNDLE_RECENCY_SECONDS"
	EnvNodesMax              = "LOG_COLLECTION_NODES_MAX"
	EnvBucket                = "LOG_COLLECTION_BUCKET"
	EnvBucketPrefix          = "LOG_COLLECTION_PREFIX"
	EnvAutomationRoleARN     = "SSM_AUTOMATION_EXECUTION_ROLE_ARN"
	EnvDocumentName          = "SSM_DOCUMENT_NAME"
	EnvExecutionsPerSecond   = "SSM_EXECUTIONS_PER_SECOND"
	EnvDiscoveryTopicARN     = "SNS_TOPIC_ARN"
	EnvDiscoveryBucket       = "S3_BUCKET_NAME"
	EnvDiscoveryRegions      = "DISCOVERY_REGIONS"
	EnvDiscoveryConcurrency  = "DISCOVERY_CONCURRENCY"
	EnvDiscoveryReportFormat = "REPORT_FORMAT"
)

// NodeLog holds the settings of the alert driven log collection flow.
type NodeLog struct {
	// ClusterID is the EKS cluster name the alerts refer to.
	ClusterID string `json:"clusterId" yaml:"clusterId"`
	// ClusterRegion is the region of the cluster.
	ClusterRegion string `json:"clusterRegion" yaml:"clusterRegion"`
	// BundleRecency is the window in which an uploaded bundle suppresses
	// fleet-wide remediation.
	BundleRecency time.Duration `json:"bundleRecency" yaml:"bundleRecency"`
	// NodesMax caps the nodes remediated for one fleet alert.
	NodesMax int `json:"nodesMax" yaml:"nodesMax"`
	// Bucket receives the log bundles.
	Bucket string `json:"bucket" yaml:"bucket"`
	// BucketPrefix restricts the recency check to keys under a prefix.
	BucketPrefix string `json:"bucketPrefix,omitempty" yaml:"bucketPrefix,omitempty"`
	// AutomationRoleARN is assumed by SSM while running the document.
	AutomationRoleARN string `json:"automationRoleArn" yaml:"automationRoleArn"`
	// DocumentName is the SSM automation document to run.
	DocumentName string `json:"documentName" yaml:"documentName"`
	// ExecutionsPerSecond paces automation starts.
	ExecutionsPerSecond float64 `json:"executionsPerSecond" yaml:"executionsPerSecond"`
}

// Discovery holds the settings of the cluster discovery job.
type Discovery struct {
	// TopicARN receives the report notification.
	TopicARN string `json:"topicArn" yaml:"topicArn"`
	// Bucket receives the report object.
	Bucket string `json:"bucket" yaml:"bucket"`
	// Regions limits the scan; empty means every enabled region.
	Regions []string `json:"regions,omitempty" yaml:"regions,omitempty"`
	// Concurrency is the number of regions scanned at once.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// ReportFormat is json or yaml.
	ReportFormat string `json:"reportFormat" yaml:"reportFormat"`
}

// File is the optional on-disk configuration. Environment variables take
// precedence over values read from it.
type File struct {
	NodeLog   NodeLog   `json:"nodeLog" yaml:"nodeLog"`
	Discovery Discovery `json:"discovery" yaml:"discovery"`
}

// NewNodeLog returns NodeLog settings populated with defaults.
func NewNodeLog() *NodeLog {
	return &NodeLog{
		BundleRecency:       defaults.BundleRecency,
		NodesMax:            defaults.NodesMax,
		DocumentName:        defaults.SSMDocumentName,
		ExecutionsPerSecond: defaults.SSMExecutionsPerSecond,
	}
}

// NewDiscovery returns Discovery settings populated with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{
		Concurrency:  defaults.DiscoveryConcurrency,
		ReportFormat: "json",
	}
}

// LoadFile reads a YAML configuration file. Missing sections keep defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f := &File{
		NodeLog:   *NewNodeLog(),
		Discovery: *NewDiscovery(),
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse config file "+path, err)
	}
	return f, nil
}

// LoadNodeLog builds NodeLog settings from the environment on top of base.
// A nil base starts from defaults. The result is validated.
func LoadNodeLog(base *NodeLog) (*NodeLog, error) {
	cfg := NewNodeLog()
	if base != nil {
		c := *base
		cfg = &c
	}

	setString(&cfg.ClusterID, EnvClusterID)
	setString(&cfg.ClusterRegion, EnvClusterRegion)
	setString(&cfg.Bucket, EnvBucket)
	setString(&cfg.BucketPrefix, EnvBucketPrefix)
	setString(&cfg.AutomationRoleARN, EnvAutomationRoleARN)
	setString(&cfg.DocumentName, EnvDocumentName)

	if v, ok := lookup(EnvBundleRecencySeconds); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalidEnv(EnvBundleRecencySeconds, v, err)
		}
		cfg.BundleRecency = time.Duration(secs) * time.Second
	}
	if v, ok := lookup(EnvNodesMax); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalidEnv(EnvNodesMax, v, err)
		}
		cfg.NodesMax = n
	}
	if v, ok := lookup(EnvExecutionsPerSecond); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, invalidEnv(EnvExecutionsPerSecond, v, err)
		}
		cfg.ExecutionsPerSecond = f
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required NodeLog setting is present and sane.
func (c *NodeLog) Validate() error {
	var missing []string
	if c.ClusterID == "" {
		missing = append(missing, EnvClusterID)
	}
	if c.ClusterRegion == "" {
		missing = append(missing, EnvClusterRegion)
	}
	if c.Bucket == "" {
		missing = append(missing, EnvBucket)
	}
	if c.AutomationRoleARN == "" {
		missing = append(missing, EnvAutomationRoleARN)
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"missing required settings: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}

	if c.NodesMax <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must be positive, got %d", EnvNodesMax, c.NodesMax))
	}
	if c.BundleRecency < 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must not be negative, got %s", EnvBundleRecencySeconds, c.BundleRecency))
	}
	if c.ExecutionsPerSecond <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must be positive, got %v", EnvExecutionsPerSecond, c.ExecutionsPerSecond))
	}
	if c.DocumentName == "" {
		c.DocumentName = defaults.SSMDocumentName
	}
	return nil
}

// LoadDiscovery builds Discovery settings from the environment on top of base.
// A nil base starts from defaults. The result is validated.
func LoadDiscovery(base *Discovery) (*Discovery, error) {
	cfg := NewDiscovery()
	if base != nil {
		c := *base
		cfg = &c
	}

	setString(&cfg.TopicARN, EnvDiscoveryTopicARN)
	setString(&cfg.Bucket, EnvDiscoveryBucket)
	setString(&cfg.ReportFormat, EnvDiscoveryReportFormat)

	if v, ok := lookup(EnvDiscoveryRegions); ok {
		cfg.Regions = splitList(v)
	}
	if v, ok := lookup(EnvDiscoveryConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalidEnv(EnvDiscoveryConcurrency, v, err)
		}
		cfg.Concurrency = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the Discovery settings.
func (c *Discovery) Validate() error {
	var missing []string
	if c.TopicARN == "" {
		missing = append(missing, EnvDiscoveryTopicARN)
	}
	if c.Bucket == "" {
		missing = append(missing, EnvDiscoveryBucket)
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"missing required settings: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}
	if c.Concurrency <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must be positive, got %d", EnvDiscoveryConcurrency, c.Concurrency))
	}
	switch strings.ToLower(c.ReportFormat) {
	case "json", "yaml":
		c.ReportFormat = strings.ToLower(c.ReportFormat)
	default:
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must be json or yaml, got %q", EnvDiscoveryReportFormat, c.ReportFormat))
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func invalidEnv(key, value string, cause error) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
		"invalid value for "+key, cause, map[string]any{"value": value})
}
