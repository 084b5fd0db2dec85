// Package discovery reports the EKS clusters of the current AWS account.
//
// A run resolves the account id through STS, lists enabled regions, scans
// them concurrently for clusters and uploads a ClusterReport to S3 in JSON
// or YAML. An SNS notification carrying the object URL follows the upload.
// Regions that cannot be read are recorded in the report instead of failing
// the run. When no clusters exist nothing is uploaded.
//
//	d, err := discovery.NewFromConfig(cfg, awsclient.New(awsCfg))
//	res, err := d.Run(ctx)
package discovery
