// Package inventory resolves Kubernetes node names to EC2 instance ids by
// matching the private DNS name of each instance.
package inventory
