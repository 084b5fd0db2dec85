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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func testNode(name string, ready v1.ConditionStatus) v1.Node {
	n := v1.Node{ObjectMeta: metav1.ObjectMeta{Name: name}}
	if ready != "" {
		n.Status.Conditions = []v1.NodeCondition{
			{Type: v1.NodeMemoryPressure, Status: v1.ConditionFalse},
			{Type: v1.NodeReady, Status: ready},
		}
	}
	return n
}

// pagedClient serves the given pages in order, one per List call.
func pagedClient(t *testing.T, pages ...[]v1.Node) (*k8sfake.Clientset, *int) {
	t.Helper()
	calls := 0
	c := k8sfake.NewClientset()
	c.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		require.Less(t, calls, len(pages), "unexpected extra page request")
		list := &v1.NodeList{Items: pages[calls]}
		calls++
		if calls < len(pages) {
			list.Continue = fmt.Sprintf("page-%d", calls)
		}
		return true, list, nil
	})
	return c, &calls
}

func TestFormatAge(t *testing.T) {
	now := metav1.Now()

	tests := []struct {
		name     string
		created  time.Time
		expected string
	}{
		{name: "Less than a minute", created: now.Add(-30 * time.Second), expected: "0m"},
		{name: "Exactly one minute", created: now.Add(-1 * time.Minute), expected: "1 minutes"},
		{name: "59 minutes", created: now.Add(-59 * time.Minute), expected: "59 minutes"},
		{name: "1 hour", created: now.Add(-1 * time.Hour), expected: "1 hours"},
		{name: "1 hour 30 minutes", created: now.Add(-1*time.Hour - 30*time.Minute), expected: "1 hours 30 minutes"},
		{name: "1 day", created: now.Add(-24 * time.Hour), expected: "1 days"},
		{name: "1 day 2 hours", created: now.Add(-26 * time.Hour), expected: "1 days 2 hours"},
		{name: "1 day 0 hours 5 minutes", created: now.Add(-24*time.Hour - 5*time.Minute), expected: "1 days 5 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAge(tt.created))
		})
	}
}

func TestList(t *testing.T) {
	n1 := testNode("node-1", v1.ConditionTrue)
	n2 := testNode("node-2", v1.ConditionFalse)
	fakeClient := k8sfake.NewClientset(&n1, &n2)

	nodes, err := List(t.Context(), ListOptions{Client: fakeClient})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node-1", nodes[0].Name)
	assert.Equal(t, "node-2", nodes[1].Name)
}

func TestList_FollowsContinue(t *testing.T) {
	c, calls := pagedClient(t,
		[]v1.Node{testNode("a", v1.ConditionTrue)},
		[]v1.Node{testNode("b", v1.ConditionTrue)},
	)
	nodes, err := List(t.Context(), ListOptions{Client: c})
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, 2, *calls)
}

func TestSummary(t *testing.T) {
	n1 := testNode("Worker-b", v1.ConditionTrue)
	n1.Spec.ProviderID = "aws:///us-west-2a/i-0bbb"
	n1.Labels = map[string]string{"eks.amazonaws.com/nodegroup": "general"}
	n1.Status.Addresses = []v1.NodeAddress{{Type: v1.NodeInternalIP, Address: "10.0.0.2"}}

	n2 := testNode("worker-a", v1.ConditionUnknown)
	n2.Spec.ProviderID = "bogus"

	nodes, err := Summary(t.Context(), ListOptions{Client: k8sfake.NewClientset(&n1, &n2)})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "worker-a", nodes[0].Name)
	assert.False(t, nodes[0].Ready)
	assert.Equal(t, "bogus", nodes[0].Host)

	assert.Equal(t, "Worker-b", nodes[1].Name)
	assert.True(t, nodes[1].Ready)
	assert.Equal(t, "i-0bbb", nodes[1].Host)
	assert.Equal(t, "10.0.0.2", nodes[1].IP)
	assert.Equal(t, "general", nodes[1].Role)
}

func TestListNotReady(t *testing.T) {
	tests := []struct {
		name      string
		pages     [][]v1.Node
		limit     int
		want      []string
		wantCalls int
	}{
		{
			name: "single page",
			pages: [][]v1.Node{{
				testNode("ok", v1.ConditionTrue),
				testNode("bad", v1.ConditionFalse),
				testNode("unknown", v1.ConditionUnknown),
				testNode("no-conditions", ""),
			}},
			limit:     5,
			want:      []string{"bad", "unknown"},
			wantCalls: 1,
		},
		{
			name: "stops at limit",
			pages: [][]v1.Node{
				{testNode("a", v1.ConditionFalse), testNode("b", v1.ConditionFalse)},
				{testNode("c", v1.ConditionFalse)},
			},
			limit:     2,
			want:      []string{"a", "b"},
			wantCalls: 1,
		},
		{
			name: "overshoots by one page",
			pages: [][]v1.Node{
				{testNode("a", v1.ConditionFalse)},
				{testNode("b", v1.ConditionFalse), testNode("c", v1.ConditionFalse)},
				{testNode("d", v1.ConditionFalse)},
			},
			limit:     2,
			want:      []string{"a", "b", "c"},
			wantCalls: 2,
		},
		{
			name: "walks every page without limit",
			pages: [][]v1.Node{
				{testNode("a", v1.ConditionTrue)},
				{testNode("b", v1.ConditionFalse)},
				{testNode("c", v1.ConditionTrue)},
			},
			want:      []string{"b"},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := pagedClient(t, tt.pages...)
			got, err := ListNotReady(t.Context(), NotReadyOptions{Client: c, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestListNotReady_Errors(t *testing.T) {
	_, err := ListNotReady(t.Context(), NotReadyOptions{})
	require.Error(t, err)

	c := k8sfake.NewClientset()
	c.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("unauthorized")
	})
	_, err = ListNotReady(t.Context(), NotReadyOptions{Client: c})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestGet(t *testing.T) {
	n := testNode("test-node", v1.ConditionTrue)
	fakeClient := k8sfake.NewClientset(&n)

	got, err := Get(t.Context(), GetOptions{Name: "test-node", Client: fakeClient})
	require.NoError(t, err)
	assert.Equal(t, "test-node", got.Name)

	_, err = Get(t.Context(), GetOptions{Name: "missing", Client: fakeClient})
	require.Error(t, err)
}

func TestGet_FromEnvironment(t *testing.T) {
	n := testNode("env-node", v1.ConditionTrue)
	t.Setenv("NODE_NAME", "env-node")

	got, err := Get(t.Context(), GetOptions{Client: k8sfake.NewClientset(&n)})
	require.NoError(t, err)
	assert.Equal(t, "env-node", got.Name)
}

func TestGetInfo(t *testing.T) {
	n := testNode("ip-10-0-0-1.ec2.internal", v1.ConditionFalse)
	n.Status.Addresses = []v1.NodeAddress{
		{Type: v1.NodeInternalIP, Address: "10.0.0.1"},
		{Type: v1.NodeInternalDNS, Address: "ip-10-0-0-1.ec2.internal"},
	}

	info, err := GetInfo(context.Background(), k8sfake.NewClientset(&n), n.Name)
	require.NoError(t, err)
	assert.Equal(t, n.Name, info.Name)
	assert.Equal(t, "Ready", info.Status)
	assert.Len(t, info.Addresses, 2)

	bare := testNode("bare", "")
	info, err = GetInfo(t.Context(), k8sfake.NewClientset(&bare), "bare")
	require.NoError(t, err)
	assert.Empty(t, info.Status)
}

func TestParseNodeRole(t *testing.T) {
	tests := []struct {
		name     string
		labels   map[string]string
		expected string
	}{
		{name: "worker role", labels: map[string]string{"node-role.kubernetes.io/worker": ""}, expected: "worker"},
		{name: "empty role label", labels: map[string]string{"node-role.kubernetes.io/": ""}, expected: NodeRoleUndefined},
		{name: "nodeRole label", labels: map[string]string{"nodeRole": "gpu"}, expected: "gpu"},
		{name: "eks node group", labels: map[string]string{"eks.amazonaws.com/nodegroup": "ng-1"}, expected: "ng-1"},
		{name: "no role labels", labels: map[string]string{"kubernetes.io/hostname": "node1"}, expected: NodeRoleUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &v1.Node{ObjectMeta: metav1.ObjectMeta{Labels: tt.labels}}
			assert.Equal(t, tt.expected, ParseNodeRole(n))
		})
	}
}

func TestParseHostID(t *testing.T) {
	id, err := parseHostID("aws:///us-west-2a/i-0123456789abcdef0")
	require.NoError(t, err)
	assert.Equal(t, "i-0123456789abcdef0", id)

	_, err = parseHostID("")
	require.Error(t, err)
	_, err = parseHostID("no-colon")
	require.Error(t, err)
}
