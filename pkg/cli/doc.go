// Package cli implements the eksops command-line interface.
//
// # Overview
//
// eksops drives the two EKS operations flows of this module from a terminal:
// alert driven node log collection and multi-region cluster discovery. It
// also exposes the read-only views those flows act on.
//
// # Commands
//
// nodelog handle - Route an SNS event file through the node log router:
//
//	eksops nodelog handle --event alert.json --cluster prod --cluster-region us-west-2 \
//	    --bucket node-logs --role-arn arn:aws:iam::123456789012:role/ssm-automation
//
// nodelog serve - Serve an SNS HTTP(S) subscription endpoint:
//
//	eksops nodelog serve --port 8080 --topic-arn arn:aws:sns:us-west-2:123456789012:alerts
//
// nodes not-ready | get | list - Inspect cluster nodes through a kubeconfig or,
// with --eks-cluster, through the EKS API and an IAM token:
//
//	eksops nodes not-ready --eks-cluster prod --format json
//	eksops nodes get ip-10-0-1-23.us-west-2.compute.internal
//
// bundles recent - List log bundles inside the fleet recency window:
//
//	eksops bundles recent --bucket node-logs --window 30m
//
// discover - Inventory clusters, upload the report and notify:
//
//	eksops discover --bucket reports --topic-arn arn:aws:sns:us-east-1:123456789012:eks
//	eksops discover --report-only --regions us-east-1,us-west-2 -o report.yaml
//
// # Global Flags
//
//	--config, -c   YAML config file (nodeLog and discovery sections)
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--region       AWS region for API calls
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// Commands that print results also take:
//
//	--output, -o   File path or s3://bucket/key (default: stdout)
//	--format, -t   yaml, json or table (default: yaml)
//
// # Configuration Precedence
//
// Command line flags win over their environment variables (CLUSTER_ID,
// LOG_COLLECTION_BUCKET, SNS_TOPIC_ARN, ...), which win over the --config
// file, which wins over built-in defaults.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Interrupted (SIGINT/SIGTERM)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/eks-patterns/eksops/pkg/cli.version=1.0.0'"
package cli
