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
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // exercising SignatureVersion 1
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCertURL = "https://sns.us-west-2.amazonaws.com/SimpleNotificationService-test.pem"

type testSigner struct {
	key     *rsa.PrivateKey
	certPEM []byte
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "sns.amazonaws.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return &testSigner{
		key:     key,
		certPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

func (s *testSigner) sign(t *testing.T, env *Envelope, version string) {
	t.Helper()
	env.SignatureVersion = version
	env.SigningCertURL = testCertURL

	var hash crypto.Hash
	var sum []byte
	if version == "1" {
		h := sha1.Sum([]byte(env.StringToSign())) //nolint:gosec // see import
		hash, sum = crypto.SHA1, h[:]
	} else {
		h := sha256.Sum256([]byte(env.StringToSign()))
		hash, sum = crypto.SHA256, h[:]
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, hash, sum)
	require.NoError(t, err)
	env.Signature = base64.StdEncoding.EncodeToString(sig)
}

func (s *testSigner) fetcher(calls *int) CertFetcher {
	return func(_ context.Context, url string) ([]byte, error) {
		*calls++
		if url != testCertURL {
			return nil, errors.New("unexpected url")
		}
		return s.certPEM, nil
	}
}

func notificationEnvelope() *Envelope {
	return &Envelope{
		Type:      TypeNotification,
		MessageID: "22b80b92-fdea-4c2c-8f9d-bdfb0c7bf324",
		TopicARN:  "arn:aws:sns:us-west-2:123456789012:nodelog",
		Subject:   "alert",
		Message:   `{"alerts":[]}`,
		Timestamp: "2025-05-01T10:00:00.000Z",
	}
}

func TestEnvelope_StringToSign(t *testing.T) {
	n := notificationEnvelope()
	assert.Equal(t,
		"Message\n{\"alerts\":[]}\nMessageId\n22b80b92-fdea-4c2c-8f9d-bdfb0c7bf324\nSubject\nalert\n"+
			"Timestamp\n2025-05-01T10:00:00.000Z\nTopicArn\narn:aws:sns:us-west-2:123456789012:nodelog\nType\nNotification\n",
		n.StringToSign())

	n.Subject = ""
	assert.NotContains(t, n.StringToSign(), "Subject")

	c := &Envelope{
		Type:         TypeSubscriptionConfirmation,
		MessageID:    "m",
		Token:        "tok",
		TopicARN:     "arn",
		Message:      "confirm",
		Timestamp:    "ts",
		SubscribeURL: "https://sns.us-west-2.amazonaws.com/?Action=ConfirmSubscription",
	}
	assert.Equal(t,
		"Message\nconfirm\nMessageId\nm\nSubscribeURL\nhttps://sns.us-west-2.amazonaws.com/?Action=ConfirmSubscription\n"+
			"Timestamp\nts\nToken\ntok\nTopicArn\narn\nType\nSubscriptionConfirmation\n",
		c.StringToSign())
}

func TestCheckSNSURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://sns.us-east-1.amazonaws.com/?Action=ConfirmSubscription", true},
		{"https://sns.cn-north-1.amazonaws.com.cn/cert.pem", true},
		{"http://sns.us-east-1.amazonaws.com/", false},
		{"https://sns.us-east-1.amazonaws.com.evil.com/", false},
		{"https://evil.com/sns.us-east-1.amazonaws.com", false},
		{"https://s3.us-east-1.amazonaws.com/", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := CheckSNSURL(tt.url)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	signer := newTestSigner(t)

	for _, version := range []string{"1", "2"} {
		t.Run("version "+version, func(t *testing.T) {
			calls := 0
			v := NewVerifier(signer.fetcher(&calls))

			env := notificationEnvelope()
			signer.sign(t, env, version)
			require.NoError(t, v.Verify(t.Context(), env))
			require.NoError(t, v.Verify(t.Context(), env))
			assert.Equal(t, 1, calls, "certificate is cached")

			env.Message = `{"alerts":[{"status":"firing"}]}`
			assert.Error(t, v.Verify(t.Context(), env))
		})
	}
}

func TestVerifier_Rejects(t *testing.T) {
	signer := newTestSigner(t)
	calls := 0
	v := NewVerifier(signer.fetcher(&calls))

	tests := []struct {
		name   string
		mutate func(*Envelope)
	}{
		{"unknown version", func(e *Envelope) { e.SignatureVersion = "3" }},
		{"bad encoding", func(e *Envelope) { e.Signature = "%%%" }},
		{"foreign cert host", func(e *Envelope) { e.SigningCertURL = "https://example.com/cert.pem" }},
		{"plain http cert", func(e *Envelope) { e.SigningCertURL = "http://sns.us-west-2.amazonaws.com/cert.pem" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := notificationEnvelope()
			signer.sign(t, env, "2")
			tt.mutate(env)
			assert.Error(t, v.Verify(t.Context(), env))
		})
	}
	assert.Zero(t, calls)
}

func TestVerifier_BadCertificate(t *testing.T) {
	v := NewVerifier(func(context.Context, string) ([]byte, error) {
		return []byte("not a pem"), nil
	})
	env := notificationEnvelope()
	newTestSigner(t).sign(t, env, "2")
	assert.ErrorContains(t, v.Verify(t.Context(), env), "not PEM")
}
