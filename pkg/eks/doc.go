// Package eks describes and lists EKS clusters and generates the IAM bearer
// tokens their API servers accept.
//
// A token is a presigned STS GetCallerIdentity URL carrying the cluster name
// in the x-k8s-aws-id header, base64url encoded without padding and prefixed
// with "k8s-aws-v1.".
package eks
