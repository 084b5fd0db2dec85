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

package alert

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eks-patterns/eksops/pkg/errors"
)

const singleNodePayload = `{
  "version": "4",
  "status": "firing",
  "receiver": "sns",
  "alerts": [
    {
      "status": "firing",
      "labels": {"alertname": "KubeNNR", "node": "ip-10-0-1-10.ec2.internal"},
      "annotations": {"summary": "node not ready"},
      "startsAt": "2025-01-15T10:30:00Z",
      "fingerprint": "a1"
    }
  ]
}`

const fleetPayload = `{
  "alerts": [
    {"status": "firing", "labels": {"alertname": "KubeNNRMax"}, "fingerprint": "b2"},
    {"status": "resolved", "labels": {"alertname": "KubeNNR", "node": "n2"}}
  ]
}`

func snsEvent(messages ...string) events.SNSEvent {
	var e events.SNSEvent
	for i, m := range messages {
		e.Records = append(e.Records, events.SNSEventRecord{
			SNS: events.SNSEntity{MessageID: string(rune('a' + i)), Message: m},
		})
	}
	return e
}

func TestParseMessage(t *testing.T) {
	m, err := ParseMessage([]byte(singleNodePayload))
	require.NoError(t, err)
	require.Len(t, m.Alerts, 1)

	a := m.Alerts[0]
	assert.Equal(t, NameNodeNotReady, a.Name())
	assert.Equal(t, "ip-10-0-1-10.ec2.internal", a.Node())
	assert.True(t, a.IsFiring())
	assert.Equal(t, "a1", a.Key())
	assert.Equal(t, 2025, a.StartsAt.Year())
	assert.Equal(t, "sns", m.Receiver)
}

func TestParseMessage_Invalid(t *testing.T) {
	_, err := ParseMessage([]byte("{not json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestParseSNSEvent_CollectsAllRecords(t *testing.T) {
	alerts, err := ParseSNSEvent(snsEvent(singleNodePayload, fleetPayload))
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, NameNodeNotReady, alerts[0].Name())
	assert.Equal(t, NameNodeNotReadyMax, alerts[1].Name())
	assert.False(t, alerts[2].IsFiring())

	assert.Equal(t, "a", alerts[0].MessageID)
	assert.Equal(t, "b", alerts[1].MessageID)
	assert.Equal(t, "b", alerts[2].MessageID)
}

func TestParseSNSEvent_Empty(t *testing.T) {
	alerts, err := ParseSNSEvent(events.SNSEvent{})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestParseSNSEvent_BadRecord(t *testing.T) {
	_, err := ParseSNSEvent(snsEvent(singleNodePayload, "oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestAlertKey(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		want  string
	}{
		{"fingerprint", Alert{Fingerprint: "f", Labels: map[string]string{"alertname": "KubeNNR"}}, "f"},
		{"fallback", Alert{Labels: map[string]string{"alertname": "KubeNNR", "node": "n1"}}, "KubeNNR/n1"},
		{"no labels", Alert{}, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alert.Key())
		})
	}
}

func TestIsFiring(t *testing.T) {
	assert.True(t, Alert{Status: StatusFiring}.IsFiring())
	assert.True(t, Alert{}.IsFiring())
	assert.False(t, Alert{Status: StatusResolved}.IsFiring())
}
