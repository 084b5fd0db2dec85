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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clustersFound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eksops_discovery_clusters",
			Help: "Number of EKS clusters found by the last discovery run",
		},
	)

	regionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eksops_discovery_region_errors_total",
			Help: "Total number of region or cluster reads that failed during discovery",
		},
		[]string{"region"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eksops_discovery_run_duration_seconds",
			Help:    "Time taken by one discovery run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)
