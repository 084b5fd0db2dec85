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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Alert outcomes recorded in alertsTotal.
const (
	outcomeHandled  = "handled"
	outcomeResolved = "resolved"
	outcomeDup      = "duplicate"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
)

var (
	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eksops_nodelog_alerts_total",
			Help: "Total number of alerts received by the node log router",
		},
		[]string{"alert", "outcome"},
	)

	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eksops_nodelog_executions_total",
			Help: "Total number of log collection automation starts",
		},
		[]string{"status"}, // started or failed
	)

	dedupSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eksops_nodelog_dedup_skips_total",
			Help: "Fleet alerts skipped because recent log bundles already exist",
		},
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eksops_nodelog_dispatch_duration_seconds",
			Help:    "Time taken to handle one batch of alerts",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 240},
		},
	)
)
