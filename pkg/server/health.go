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
	"net/http"
	"time"

	"github.com/eks-patterns/eksops/pkg/serializer"
)

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Only reported by /ready.
	TopicARN         string `json:"topicArn,omitempty" yaml:"topicArn,omitempty"`
	VerifySignatures *bool  `json:"verifySignatures,omitempty" yaml:"verifySignatures,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.config.Version,
	})
}

// handleReady reports 503 until the listener is up and an event handler is
// wired.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	verify := s.verifier != nil
	resp := HealthResponse{
		Status:           "ready",
		Timestamp:        time.Now().UTC(),
		Version:          s.config.Version,
		TopicARN:         s.config.TopicARN,
		VerifySignatures: &verify,
	}

	if reason := s.notReadyReason(); reason != "" {
		resp.Status = "not_ready"
		resp.Reason = reason
		serializer.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

func (s *Server) notReadyReason() string {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	switch {
	case !ready:
		return "server is not accepting traffic"
	case s.events == nil:
		return "no event handler configured"
	default:
		return ""
	}
}
