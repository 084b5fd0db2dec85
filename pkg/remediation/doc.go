// Package remediation starts the AWSSupport-CollectEKSInstanceLogs automation
// on EC2 instances. Calls are paced by a token bucket and each carries a fresh
// idempotency token.
package remediation
