// Package alert decodes Alertmanager webhook payloads delivered through SNS.
package alert
