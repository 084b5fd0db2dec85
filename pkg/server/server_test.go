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
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	routes := map[string]http.HandlerFunc{
		"/test": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
	}

	s := New(WithConfig(testConfig()), WithName("nodelog"), WithVersion("v1"), WithHandler(routes))
	require.NotNil(t, s.httpServer)
	require.NotNil(t, s.rateLimiter)
	assert.Nil(t, s.verifier)
	assert.Equal(t, "nodelog", s.config.Name)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestNew_DefaultVerifier(t *testing.T) {
	s := New()
	assert.NotNil(t, s.verifier)
}

func TestHealthAndReady(t *testing.T) {
	s := New(WithConfig(testConfig()), WithVersion("v1.4.0"))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "v1.4.0", health.Version)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		handler    EventHandler
		ready      bool
		wantCode   int
		wantReason string
	}{
		{"not started", &fakeEvents{}, false, http.StatusServiceUnavailable, "server is not accepting traffic"},
		{"no event handler", nil, true, http.StatusServiceUnavailable, "no event handler configured"},
		{"ready", &fakeEvents{}, true, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.TopicARN = "arn:aws:sns:us-east-1:123456789012:nodelog"
			s := New(WithConfig(cfg), WithEventHandler(tt.handler))
			s.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantReason, resp.Reason)
			assert.Equal(t, cfg.TopicARN, resp.TopicARN)
			require.NotNil(t, resp.VerifySignatures)
			assert.False(t, *resp.VerifySignatures)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(WithConfig(testConfig()))
	postSNS(t, s, notificationEnvelope(), "")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eksops_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/sns"`)
}

func TestDefaultRoute(t *testing.T) {
	s := New(WithConfig(testConfig()), WithName("eksops"), WithVersion("v0.1.0"))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Routes  []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "eksops", resp.Name)
	assert.Equal(t, "v0.1.0", resp.Version)
	assert.Contains(t, resp.Routes, "POST /sns")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.ShutdownTimeout = 2 * time.Second
	s := New(WithConfig(cfg))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(cfg.Port) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test probe
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
