// Package handler adapts the node log router and the discovery job to
// AWS Lambda handler signatures.
package handler
