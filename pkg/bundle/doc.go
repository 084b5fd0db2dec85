// Package bundle lists log bundles recently uploaded to the collection bucket.
// The node log automation uses it to avoid collecting logs from a whole fleet
// twice within a short window.
package bundle
