// Copyright (c) 2025, The eksops Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/k8s/client"
)

// ListOptions contains the configuration options for listing nodes in a Kubernetes cluster.
type ListOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	Kubeconfig string
	// LabelSelector is a selector to filter nodes based on labels.
	LabelSelector string
	// FieldSelector is a selector to filter nodes based on fields.
	FieldSelector string
	// Limit is the maximum number of nodes to return (0 means the hard cap).
	Limit int64
	// Client overrides the client built from Kubeconfig.
	Client client.Interface
}

// Node is a condensed view of a cluster node.
type Node struct {
	// Name is the name of the node.
	Name string `json:"name" yaml:"name"`
	// Role is the role of the node, derived from its labels.
	Role string `json:"role" yaml:"role"`
	// Ready reports whether the Ready condition is True.
	Ready bool `json:"ready" yaml:"ready"`
	// Age is the age of the node as a duration since its creation.
	Age string `json:"age" yaml:"age"`
	// Host is the provider host id of the node, the EC2 instance id on EKS.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// IP is the primary IP address of the node.
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`
}

// Info is the status snapshot of a single node.
type Info struct {
	// Name is the name of the node.
	Name string `json:"node" yaml:"node"`
	// Status is the type of the most recent condition reported for the node.
	Status string `json:"nodeStatus" yaml:"nodeStatus"`
	// Addresses lists the node addresses.
	Addresses []v1.NodeAddress `json:"nodeAddresses" yaml:"nodeAddresses"`
}

func resolveClient(c client.Interface, kubeconfig string) (client.Interface, error) {
	if c != nil {
		return c, nil
	}
	if kubeconfig == "" {
		cs, _, err := client.GetKubeClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		return cs, nil
	}
	cs, _, err := client.BuildKubeClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return cs, nil
}

// Summary returns a condensed view of the listed nodes sorted by name.
func Summary(ctx context.Context, opt ListOptions) ([]*Node, error) {
	list, err := List(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]*Node, 0, len(list))
	for _, n := range list {
		node := &Node{
			Name:  n.Name,
			Role:  ParseNodeRole(n),
			Ready: IsReady(n),
			Age:   FormatAge(n.CreationTimestamp.Time),
			IP:    getNodeIP(n, v1.NodeInternalIP),
		}

		if node.Host, err = parseHostID(n.Spec.ProviderID); err != nil {
			slog.Warn("failed to parse node providerID", "node", n.Name, "providerID", n.Spec.ProviderID, "error", err)
			node.Host = n.Spec.ProviderID
		}

		nodes = append(nodes, node)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})

	return nodes, nil
}

const (
	MinuteDuration = time.Minute
	HourDuration   = time.Hour
	DayDuration    = 24 * HourDuration
)

// FormatAge formats the age of a node as a human-readable string.
// If the node was created less than a minute ago, it returns "0m".
func FormatAge(createdOn time.Time) string {
	d := metav1.Now().Sub(createdOn)

	if d < MinuteDuration {
		return "0m"
	}

	days := d / DayDuration
	d -= days * DayDuration

	hours := d / HourDuration
	d -= hours * HourDuration

	minutes := d / MinuteDuration

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}

	if len(parts) > 1 {
		return parts[0] + " " + parts[1]
	}
	return parts[0]
}

const (
	nodeListPageSizeDefault int64 = 500
	nodeListAbsoluteMax     int64 = 10000 // Hard cap to prevent memory exhaustion
)

// List returns the nodes matching the options, following continue tokens
// until the list is exhausted or the limit is reached.
func List(ctx context.Context, opt ListOptions) ([]*v1.Node, error) {
	c, err := resolveClient(opt.Client, opt.Kubeconfig)
	if err != nil {
		return nil, err
	}

	effectiveLimit := opt.Limit
	if effectiveLimit <= 0 || effectiveLimit > nodeListAbsoluteMax {
		effectiveLimit = nodeListAbsoluteMax
	}

	pageSize := min(nodeListPageSizeDefault, effectiveLimit)

	var allNodes []*v1.Node
	continueToken := ""
	totalFetched := int64(0)

	for {
		currentLimit := min(pageSize, effectiveLimit-totalFetched)

		list, err := c.CoreV1().Nodes().List(ctx, metav1.ListOptions{
			LabelSelector: opt.LabelSelector,
			FieldSelector: opt.FieldSelector,
			Limit:         currentLimit,
			Continue:      continueToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get nodes: %w", err)
		}

		for i := range list.Items {
			allNodes = append(allNodes, &list.Items[i])
		}
		totalFetched += int64(len(list.Items))

		slog.Debug("fetched nodes page",
			slog.Int("pageSize", len(list.Items)),
			slog.Int64("totalFetched", totalFetched),
			slog.Bool("hasMore", list.Continue != ""),
		)

		continueToken = list.Continue
		if continueToken == "" || totalFetched >= effectiveLimit {
			break
		}
		if len(list.Items) == 0 {
			slog.Warn("received empty page with continue token, stopping pagination")
			break
		}
	}

	return allNodes, nil
}

// NotReadyOptions configures ListNotReady.
type NotReadyOptions struct {
	// Client is the cluster to query.
	Client client.Interface
	// Limit stops pagination once this many not-ready nodes were collected.
	// The result may overshoot it by up to one page. Zero means no limit.
	Limit int
	// PageSize is the number of nodes requested per page.
	PageSize int64
}

// ListNotReady returns the names of nodes whose Ready condition is not True.
// Nodes that report no Ready condition at all are not included.
func ListNotReady(ctx context.Context, opt NotReadyOptions) ([]string, error) {
	if opt.Client == nil {
		return nil, fmt.Errorf("kubernetes client is required")
	}
	pageSize := opt.PageSize
	if pageSize <= 0 {
		pageSize = defaults.NodeListPageSize
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sListTimeout)
	defer cancel()

	var notReady []string
	continueToken := ""
	pages := 0

	for {
		list, err := opt.Client.CoreV1().Nodes().List(ctx, metav1.ListOptions{
			Limit:    pageSize,
			Continue: continueToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list nodes: %w", err)
		}
		pages++

		for i := range list.Items {
			if isNotReady(&list.Items[i]) {
				notReady = append(notReady, list.Items[i].Name)
			}
		}

		continueToken = list.Continue
		if continueToken == "" || (opt.Limit > 0 && len(notReady) >= opt.Limit) {
			break
		}
		if len(list.Items) == 0 {
			slog.Warn("received empty page with continue token, stopping pagination")
			break
		}
	}

	slog.Debug("not ready nodes listed", "count", len(notReady), "pages", pages, "limit", opt.Limit)
	return notReady, nil
}

// IsReady reports whether the node's Ready condition is True.
func IsReady(n *v1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == v1.NodeReady {
			return c.Status == v1.ConditionTrue
		}
	}
	return false
}

func isNotReady(n *v1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == v1.NodeReady {
			return c.Status != v1.ConditionTrue
		}
	}
	return false
}

// GetInfo reads one node and reports its latest condition and addresses.
func GetInfo(ctx context.Context, c client.Interface, name string) (*Info, error) {
	n, err := Get(ctx, GetOptions{Name: name, Client: c})
	if err != nil {
		return nil, err
	}

	info := &Info{
		Name:      n.Name,
		Addresses: n.Status.Addresses,
	}
	if conds := n.Status.Conditions; len(conds) > 0 {
		info.Status = string(conds[len(conds)-1].Type)
	}
	return info, nil
}

// GetOptions contains the configuration options for reading a single node.
type GetOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	Kubeconfig string
	// Name is the name of the node to get.
	Name string
	// Client overrides the client built from Kubeconfig.
	Client client.Interface
}

// Validate checks if the GetOptions are valid.
func (opt *GetOptions) Validate() error {
	if opt.Name == "" {
		return fmt.Errorf("node name is required")
	}
	return nil
}

// Get returns a specific node. If no node name is provided, it attempts to
// detect the current node from the NODE_NAME environment variable.
func Get(ctx context.Context, opt GetOptions) (*v1.Node, error) {
	if opt.Name == "" {
		nodeName := getNodeName()
		if nodeName == "" {
			return nil, fmt.Errorf("node name not provided and could not detect current node (set NODE_NAME environment variable)")
		}
		opt.Name = nodeName
		slog.Debug("using current node from environment", "node", nodeName)
	}

	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	c, err := resolveClient(opt.Client, opt.Kubeconfig)
	if err != nil {
		return nil, err
	}

	node, err := c.CoreV1().Nodes().Get(ctx, opt.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %s: %w", opt.Name, err)
	}

	return node, nil
}

const (
	NodeRoleLabelPrefix = "node-role.kubernetes.io/"
	NodeRoleLabel       = "nodeRole"
	NodeRoleUndefined   = "undefined"

	eksNodeGroupLabel = "eks.amazonaws.com/nodegroup"
)

// ParseNodeRole parses the node role from the node labels. It checks the
// node-role.kubernetes.io/ prefix, then a nodeRole label, then the EKS
// managed node group label. If no role is found, it returns NodeRoleUndefined.
func ParseNodeRole(n *v1.Node) string {
	for k := range n.Labels {
		if strings.HasPrefix(k, NodeRoleLabelPrefix) {
			role := strings.TrimPrefix(k, NodeRoleLabelPrefix)
			if role != "" {
				return role
			}
		}
	}

	for k, v := range n.Labels {
		if strings.EqualFold(k, NodeRoleLabel) {
			return v
		}
	}

	if ng := n.Labels[eksNodeGroupLabel]; ng != "" {
		return ng
	}

	return NodeRoleUndefined
}

// parseHostID returns the last path element of a provider id, which is the
// instance id for aws:///<zone>/<instance-id>.
func parseHostID(providerID string) (string, error) {
	if providerID == "" {
		return "", fmt.Errorf("node providerID is empty")
	}

	parts := strings.Split(providerID, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid providerID format: %s", providerID)
	}

	provider := strings.ToLower(parts[0])
	details := strings.TrimPrefix(providerID, provider+"://")

	subParts := strings.Split(details, "/")
	return subParts[len(subParts)-1], nil
}

func getNodeIP(node *v1.Node, ipType v1.NodeAddressType) string {
	for _, addr := range node.Status.Addresses {
		if addr.Type == ipType {
			return addr.Address
		}
	}
	return ""
}

// getNodeName retrieves the current node name from NODE_NAME, then
// KUBERNETES_NODE_NAME, then HOSTNAME.
func getNodeName() string {
	for _, k := range []string{"NODE_NAME", "KUBERNETES_NODE_NAME", "HOSTNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
