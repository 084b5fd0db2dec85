// Package config loads runtime settings for the node log automation and the
// cluster discovery job.
//
// Settings come from environment variables, optionally layered on top of a
// YAML file loaded with LoadFile. Environment values always win. Both
// LoadNodeLog and LoadDiscovery validate the result and return a
// StructuredError with code INVALID_REQUEST naming every missing variable.
package config
