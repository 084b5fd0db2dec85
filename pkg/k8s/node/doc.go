// Package node reads cluster nodes: paginated listing, not-ready detection
// and per-node status for the node log automation and the CLI.
package node
