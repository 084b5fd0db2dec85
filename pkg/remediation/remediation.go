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

package remediation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
)

// Automation document parameter names.
const (
	ParamInstanceID     = "EKSInstanceId"
	ParamLogDestination = "LogDestination"
	ParamAssumeRole     = "AutomationAssumeRole"
)

var tokenNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/eks-patterns/eksops/remediation"))

type messageIDKey struct{}

// ContextWithMessageID returns a copy of ctx carrying the id of the SNS
// message whose alerts are being remediated.
func ContextWithMessageID(ctx context.Context, messageID string) context.Context {
	if messageID == "" {
		return ctx
	}
	return context.WithValue(ctx, messageIDKey{}, messageID)
}

// MessageIDFromContext returns the SNS message id stored in ctx, if any.
func MessageIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey{}).(string)
	return id
}

// Trigger starts the log collection automation document on EC2 instances.
type Trigger struct {
	client   awsclient.SSMAPI
	bucket   string
	roleARN  string
	document string
	limiter  *rate.Limiter
	newToken func() string
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithDocument overrides the automation document name.
func WithDocument(name string) Option {
	return func(t *Trigger) {
		if name != "" {
			t.document = name
		}
	}
}

// WithRate sets the sustained executions per second and burst.
func WithRate(perSecond float64, burst int) Option {
	return func(t *Trigger) {
		if perSecond > 0 && burst > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithClientTokens replaces the generator of tokens for starts that carry no
// SNS message id.
func WithClientTokens(fn func() string) Option {
	return func(t *Trigger) {
		if fn != nil {
			t.newToken = fn
		}
	}
}

// NewTrigger returns a Trigger that uploads bundles to bucket and runs the
// document as roleARN.
func NewTrigger(client awsclient.SSMAPI, bucket, roleARN string, opts ...Option) *Trigger {
	t := &Trigger{
		client:   client,
		bucket:   bucket,
		roleARN:  roleARN,
		document: defaults.SSMDocumentName,
		limiter:  rate.NewLimiter(rate.Limit(defaults.SSMExecutionsPerSecond), defaults.SSMExecutionsBurst),
		newToken: uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Document returns the automation document name.
func (t *Trigger) Document() string {
	return t.document
}

// clientToken derives the idempotency token from the SNS message id, the
// document and the instance, so a redelivered message maps to the execution
// already started. Without a message id every start gets a fresh token.
func (t *Trigger) clientToken(ctx context.Context, instanceID string) string {
	messageID := MessageIDFromContext(ctx)
	if messageID == "" {
		return t.newToken()
	}
	return uuid.NewSHA1(tokenNamespace, []byte(messageID+"/"+t.document+"/"+instanceID)).String()
}

// Start runs the automation document for instanceID and returns the
// execution id. It blocks until the limiter admits the call.
func (t *Trigger) Start(ctx context.Context, instanceID string) (string, error) {
	if instanceID == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "instance id is required")
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(errors.ErrCodeTimeout, "rate limiter wait aborted", err)
	}

	out, err := t.client.StartAutomationExecution(ctx, &ssm.StartAutomationExecutionInput{
		DocumentName: aws.String(t.document),
		ClientToken:  aws.String(t.clientToken(ctx, instanceID)),
		Parameters: map[string][]string{
			ParamInstanceID:     {instanceID},
			ParamLogDestination: {t.bucket},
			ParamAssumeRole:     {t.roleARN},
		},
	})
	if err != nil {
		return "", fmt.Errorf("instance %s: %w", instanceID, errors.FromAWS("ssm:StartAutomationExecution", err))
	}

	id := aws.ToString(out.AutomationExecutionId)
	slog.Info("log collection automation started",
		"instance", instanceID, "executionId", id, "document", t.document)
	return id, nil
}
