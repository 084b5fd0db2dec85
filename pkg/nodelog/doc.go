// Package nodelog turns node not-ready alerts into log collection runs.
//
// The Router receives Alertmanager alerts, usually through SNS, and
// dispatches them by name:
//
//   - KubeNNR: the instances behind the alert's node label get the log
//     collection automation started on them.
//   - KubeNNRMax: up to NodesMax not-ready nodes are listed from the cluster
//     and remediated, unless log bundles were already uploaded within the
//     recency window.
//
// Resolved and duplicate alerts are skipped and an instance is remediated at
// most once per batch. Each dispatch returns a Summary and the joined errors
// of the alerts that failed.
package nodelog
