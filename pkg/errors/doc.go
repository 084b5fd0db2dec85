// Package errors provides structured error types for better observability
// and programmatic error handling across eksops.
//
// AWS SDK errors are classified with FromAWS so callers can branch on the
// code instead of matching API error strings:
//
//	out, err := api.StartAutomationExecution(ctx, in)
//	if err != nil {
//	    return "", errors.FromAWS("StartAutomationExecution", err)
//	}
//
// Example usage with context:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "failed to list not ready nodes",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "cluster": clusterName,
//	    },
//	)
package errors
