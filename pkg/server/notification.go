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

package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
	"github.com/eks-patterns/eksops/pkg/nodelog"
	"github.com/eks-patterns/eksops/pkg/serializer"
)

// NotificationResponse is returned for handled Notification messages.
type NotificationResponse struct {
	MessageID string           `json:"messageId"`
	Summary   *nodelog.Summary `json:"summary"`
	Error     string           `json:"error,omitempty"`
}

// handleSNS handles POST /sns
func (s *Server) handleSNS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{"method": r.Method})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest,
				"Request body too large", false, map[string]any{"limit": tooLarge.Limit})
			return
		}
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Failed to read body", false, nil)
		return
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		snsMessagesTotal.WithLabelValues("unknown", "invalid").Inc()
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid SNS message", false, map[string]any{"error": err.Error()})
		return
	}

	if hdr := r.Header.Get(HeaderMessageType); hdr != "" && hdr != env.Type {
		snsMessagesTotal.WithLabelValues(env.Type, "invalid").Inc()
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Message type header does not match body", false,
			map[string]any{"header": hdr, "body": env.Type})
		return
	}

	if s.config.TopicARN != "" && env.TopicARN != s.config.TopicARN {
		snsMessagesTotal.WithLabelValues(env.Type, "forbidden").Inc()
		WriteError(w, r, http.StatusForbidden, ErrCodeForbidden,
			"Topic not accepted", false, map[string]any{"topicArn": env.TopicARN})
		return
	}

	if s.verifier != nil {
		if err := s.verifier.Verify(r.Context(), &env); err != nil {
			slog.Warn("sns signature rejected", "messageId", env.MessageID, "error", err)
			snsMessagesTotal.WithLabelValues(env.Type, "forbidden").Inc()
			WriteError(w, r, http.StatusForbidden, ErrCodeForbidden,
				"Invalid message signature", false, nil)
			return
		}
	}

	switch env.Type {
	case TypeSubscriptionConfirmation:
		s.confirmSubscription(w, r, &env)
	case TypeUnsubscribeConfirmation:
		slog.Info("sns subscription removed", "topicArn", env.TopicARN)
		snsMessagesTotal.WithLabelValues(env.Type, "handled").Inc()
		serializer.RespondJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
	case TypeNotification:
		s.handleNotification(w, r, &env)
	default:
		snsMessagesTotal.WithLabelValues("unknown", "invalid").Inc()
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Unknown SNS message type", false, map[string]any{"type": env.Type})
	}
}

func (s *Server) confirmSubscription(w http.ResponseWriter, r *http.Request, env *Envelope) {
	if err := CheckSNSURL(env.SubscribeURL); err != nil {
		snsMessagesTotal.WithLabelValues(env.Type, "invalid").Inc()
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid SubscribeURL", false, map[string]any{"error": err.Error()})
		return
	}

	if _, err := s.reader.ReadWithContext(r.Context(), env.SubscribeURL); err != nil {
		slog.Error("sns subscription confirmation failed", "topicArn", env.TopicARN, "error", err)
		snsMessagesTotal.WithLabelValues(env.Type, "failed").Inc()
		WriteError(w, r, http.StatusBadGateway, ErrCodeServiceUnavailable,
			"Subscription confirmation failed", true, nil)
		return
	}

	slog.Info("sns subscription confirmed", "topicArn", env.TopicARN)
	snsMessagesTotal.WithLabelValues(env.Type, "handled").Inc()
	serializer.RespondJSON(w, http.StatusOK, map[string]string{
		"status":   "confirmed",
		"topicArn": env.TopicARN,
	})
}

// handleNotification routes the alerts of one notification. Partial failures
// answer 200. A batch where nothing started and something failed answers 503,
// which SNS redelivers. Handling is not canceled when SNS drops the connection;
// it is bounded by NodeLogHandlerTimeout instead.
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request, env *Envelope) {
	if s.events == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"No event handler configured", true, nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), defaults.NodeLogHandlerTimeout)
	defer cancel()

	sum, err := s.events.HandleSNSEvent(ctx, toSNSEvent(env))
	if sum == nil {
		sum = &nodelog.Summary{}
	}
	resp := NotificationResponse{MessageID: env.MessageID, Summary: sum}

	switch {
	case err == nil:
		snsMessagesTotal.WithLabelValues(env.Type, "handled").Inc()
		serializer.RespondJSON(w, http.StatusOK, resp)
	case sum.Received == 0 && errors.CodeOf(err) == errors.ErrCodeInvalidRequest:
		snsMessagesTotal.WithLabelValues(env.Type, "invalid").Inc()
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid alert payload", false, map[string]any{"error": err.Error()})
	case len(sum.Executions) == 0 && sum.Failed > 0:
		snsMessagesTotal.WithLabelValues(env.Type, "failed").Inc()
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Alert handling failed", true, map[string]any{"error": err.Error()})
	default:
		slog.Warn("notification partially handled", "messageId", env.MessageID, "error", err)
		snsMessagesTotal.WithLabelValues(env.Type, "partial").Inc()
		resp.Error = err.Error()
		serializer.RespondJSON(w, http.StatusOK, resp)
	}
}

func toSNSEvent(env *Envelope) events.SNSEvent {
	ts, _ := time.Parse(time.RFC3339, env.Timestamp)
	return events.SNSEvent{
		Records: []events.SNSEventRecord{{
			EventSource:  "aws:sns",
			EventVersion: "1.0",
			SNS: events.SNSEntity{
				Type:             env.Type,
				MessageID:        env.MessageID,
				TopicArn:         env.TopicARN,
				Subject:          env.Subject,
				Message:          env.Message,
				Timestamp:        ts,
				SignatureVersion: env.SignatureVersion,
				Signature:        env.Signature,
				SigningCertURL:   env.SigningCertURL,
				UnsubscribeURL:   env.UnsubscribeURL,
			},
		}},
	}
}
