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
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/eks-patterns/eksops/pkg/errors"
)

// Alert names routed by the node log automation.
const (
	// NameNodeNotReady fires for a single node in NotReady state.
	NameNodeNotReady = "KubeNNR"
	// NameNodeNotReadyMax fires when more than the configured number of
	// nodes are NotReady.
	NameNodeNotReadyMax = "KubeNNRMax"
)

// Alert statuses reported by Alertmanager.
const (
	StatusFiring   = "firing"
	StatusResolved = "resolved"
)

const (
	labelAlertName = "alertname"
	labelNode      = "node"
)

// Message is an Alertmanager webhook payload.
type Message struct {
	Version           string            `json:"version,omitempty"`
	GroupKey          string            `json:"groupKey,omitempty"`
	Status            string            `json:"status,omitempty"`
	Receiver          string            `json:"receiver,omitempty"`
	GroupLabels       map[string]string `json:"groupLabels,omitempty"`
	CommonLabels      map[string]string `json:"commonLabels,omitempty"`
	CommonAnnotations map[string]string `json:"commonAnnotations,omitempty"`
	ExternalURL       string            `json:"externalURL,omitempty"`
	Alerts            []Alert           `json:"alerts"`
}

// Alert is a single alert inside a Message.
type Alert struct {
	Status       string            `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations,omitempty"`
	StartsAt     time.Time         `json:"startsAt,omitempty"`
	EndsAt       time.Time         `json:"endsAt,omitempty"`
	GeneratorURL string            `json:"generatorURL,omitempty"`
	Fingerprint  string            `json:"fingerprint,omitempty"`

	// MessageID is the SNS message the alert arrived in.
	MessageID string `json:"-"`
}

// Name returns the alertname label.
func (a Alert) Name() string {
	return a.Labels[labelAlertName]
}

// Node returns the node label, empty when absent.
func (a Alert) Node() string {
	return a.Labels[labelNode]
}

// IsFiring reports whether the alert is active. An empty status is treated
// as firing since some senders omit it.
func (a Alert) IsFiring() bool {
	return a.Status != StatusResolved
}

// Key identifies the alert for de-duplication. It is the fingerprint when
// present, otherwise the alert name and node.
func (a Alert) Key() string {
	if a.Fingerprint != "" {
		return a.Fingerprint
	}
	return a.Name() + "/" + a.Node()
}

// ParseMessage decodes one Alertmanager webhook payload.
func ParseMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode alert message", err)
	}
	return &m, nil
}

// ParseSNSEvent collects the alerts of every record in the event, in record
// order. The first malformed record aborts parsing.
func ParseSNSEvent(event events.SNSEvent) ([]Alert, error) {
	var alerts []Alert
	for i, rec := range event.Records {
		m, err := ParseMessage([]byte(rec.SNS.Message))
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid SNS record %d", i), err,
				map[string]any{"record": i, "messageId": rec.SNS.MessageID})
		}
		for _, a := range m.Alerts {
			a.MessageID = rec.SNS.MessageID
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}
