// Package logging provides structured logging utilities for eksops components.
//
// # Overview
//
// This package wraps the standard library slog package with eksops defaults so
// that the Lambda handlers, the SNS HTTP endpoint and the CLI emit the same
// JSON records. It supports environment-based level configuration and injects
// module and version attributes.
//
// # Log Levels
//
// Supported levels (case-insensitive):
//   - DEBUG: detailed diagnostic information with source location
//   - INFO: general informational messages (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("nodelog", version)
//	    slog.Info("handler starting", "cluster", clusterID)
//	}
//
// Explicit level, as used by the CLI --log-level flag:
//
//	logging.SetDefaultStructuredLoggerWithLevel("eksops", version, "debug")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no explicit level
// is passed:
//
//	LOG_LEVEL=debug eksops nodes not-ready
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "remediation started",
//	    "module": "nodelog",
//	    "version": "v1.0.0",
//	    "instance": "i-0123456789abcdef0"
//	}
package logging
