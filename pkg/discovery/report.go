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
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/eks-patterns/eksops/pkg/header"
	"github.com/eks-patterns/eksops/pkg/serializer"
	"github.com/eks-patterns/eksops/pkg/version"
)

// Subject is the SNS subject of the report notification.
const Subject = "Amazon EKS Cluster Information Notification"

const keyTimeLayout = "20060102_150405"

// ClusterInfo is one row of the report.
type ClusterInfo struct {
	AccountID       string            `json:"accountId" yaml:"accountId"`
	Region          string            `json:"region" yaml:"region"`
	Name            string            `json:"clusterName" yaml:"clusterName"`
	ARN             string            `json:"clusterArn" yaml:"clusterArn"`
	Version         string            `json:"clusterVersion" yaml:"clusterVersion"`
	PlatformVersion string            `json:"platformVersion,omitempty" yaml:"platformVersion,omitempty"`
	Status          string            `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt       time.Time         `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
	Tags            map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// VersionCount is the number of clusters running one Kubernetes version.
type VersionCount struct {
	Version string `json:"clusterVersion" yaml:"clusterVersion"`
	Count   int    `json:"count" yaml:"count"`
}

// RegionError records a region, or a single cluster in it, that could not be read.
type RegionError struct {
	Region  string `json:"region" yaml:"region"`
	Cluster string `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Report is the document uploaded after a scan.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	AccountID     string         `json:"accountId" yaml:"accountId"`
	Regions       []string       `json:"regions" yaml:"regions"`
	Clusters      []ClusterInfo  `json:"clusters" yaml:"clusters"`
	VersionCounts []VersionCount `json:"versionCounts" yaml:"versionCounts"`
	RegionErrors  []RegionError  `json:"regionErrors,omitempty" yaml:"regionErrors,omitempty"`
}

// BuildReport assembles a report. Clusters are ordered by region then name,
// and version counts by Kubernetes version, oldest first.
func BuildReport(account string, regions []string, clusters []ClusterInfo, regionErrs []RegionError, toolVersion string, at time.Time) *Report {
	r := &Report{
		AccountID:    account,
		Regions:      slices.Sorted(slices.Values(regions)),
		Clusters:     slices.Clone(clusters),
		RegionErrors: slices.Clone(regionErrs),
	}
	r.InitAt(header.KindClusterReport, toolVersion, at)
	r.Metadata["account"] = account

	slices.SortFunc(r.Clusters, func(a, b ClusterInfo) int {
		if c := strings.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortFunc(r.RegionErrors, func(a, b RegionError) int {
		if c := strings.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return strings.Compare(a.Cluster, b.Cluster)
	})

	r.VersionCounts = countVersions(r.Clusters)
	return r
}

func countVersions(clusters []ClusterInfo) []VersionCount {
	counts := make(map[string]int)
	for _, c := range clusters {
		counts[c.Version]++
	}

	keys := slices.Collect(maps.Keys(counts))
	version.Sort(keys)

	out := make([]VersionCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, VersionCount{Version: k, Count: counts[k]})
	}
	return out
}

// ObjectKey names the report object: cluster_info_<account>_<YYYYmmdd_HHMMSS>.<ext>.
func ObjectKey(account string, at time.Time, format serializer.Format) string {
	return fmt.Sprintf("cluster_info_%s_%s.%s", account, at.UTC().Format(keyTimeLayout), format.Extension())
}

// ObjectURL is the virtual-hosted S3 URL of key in bucket.
func ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

func notificationMessage(url string) string {
	return "Please find the EKS cluster information at: " + url
}
