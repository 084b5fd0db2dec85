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
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // SignatureVersion 1 is SHA1 by definition
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// SNS message types posted to HTTP(S) subscribers.
const (
	TypeNotification             = "Notification"
	TypeSubscriptionConfirmation = "SubscriptionConfirmation"
	TypeUnsubscribeConfirmation  = "UnsubscribeConfirmation"
)

// Headers set by SNS on every delivery.
const (
	HeaderMessageType = "X-Amz-Sns-Message-Type"
	HeaderMessageID   = "X-Amz-Sns-Message-Id"
)

var snsHostPattern = regexp.MustCompile(`^sns\.[a-z0-9-]+\.amazonaws\.com(\.cn)?$`)

// Envelope is the JSON document SNS posts to HTTP(S) endpoints.
type Envelope struct {
	Type             string `json:"Type"`
	MessageID        string `json:"MessageId"`
	Token            string `json:"Token,omitempty"`
	TopicARN         string `json:"TopicArn"`
	Subject          string `json:"Subject,omitempty"`
	Message          string `json:"Message"`
	Timestamp        string `json:"Timestamp"`
	SignatureVersion string `json:"SignatureVersion"`
	Signature        string `json:"Signature"`
	SigningCertURL   string `json:"SigningCertURL"`
	SubscribeURL     string `json:"SubscribeURL,omitempty"`
	UnsubscribeURL   string `json:"UnsubscribeURL,omitempty"`
}

// StringToSign builds the canonical string SNS signs for this message type.
func (e *Envelope) StringToSign() string {
	var b strings.Builder
	add := func(k, v string) {
		b.WriteString(k)
		b.WriteByte('\n')
		b.WriteString(v)
		b.WriteByte('\n')
	}

	add("Message", e.Message)
	add("MessageId", e.MessageID)
	if e.Type == TypeNotification {
		if e.Subject != "" {
			add("Subject", e.Subject)
		}
	} else {
		add("SubscribeURL", e.SubscribeURL)
	}
	add("Timestamp", e.Timestamp)
	if e.Type != TypeNotification {
		add("Token", e.Token)
	}
	add("TopicArn", e.TopicARN)
	add("Type", e.Type)
	return b.String()
}

// CheckSNSURL accepts only https URLs served by an sns.<region>.amazonaws.com host.
func CheckSNSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("url scheme must be https, got %q", u.Scheme)
	}
	if !snsHostPattern.MatchString(u.Hostname()) {
		return fmt.Errorf("host %q is not an SNS endpoint", u.Hostname())
	}
	return nil
}

// CertFetcher retrieves the PEM signing certificate at url.
type CertFetcher func(ctx context.Context, url string) ([]byte, error)

// Verifier checks SNS message signatures. Certificates are cached by URL.
type Verifier struct {
	fetch CertFetcher

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// NewVerifier returns a Verifier that loads certificates through fetch.
func NewVerifier(fetch CertFetcher) *Verifier {
	return &Verifier{
		fetch: fetch,
		certs: make(map[string]*x509.Certificate),
	}
}

// Verify returns nil when env carries a valid signature from an SNS certificate.
func (v *Verifier) Verify(ctx context.Context, env *Envelope) error {
	var hash crypto.Hash
	switch env.SignatureVersion {
	case "1":
		hash = crypto.SHA1
	case "2":
		hash = crypto.SHA256
	default:
		return fmt.Errorf("unsupported signature version %q", env.SignatureVersion)
	}

	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	cert, err := v.certificate(ctx, env.SigningCertURL)
	if err != nil {
		return err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("signing certificate does not hold an RSA key")
	}

	if err := rsa.VerifyPKCS1v15(pub, hash, digest(hash, env.StringToSign()), sig); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}
	return nil
}

func digest(hash crypto.Hash, s string) []byte {
	if hash == crypto.SHA1 {
		sum := sha1.Sum([]byte(s)) //nolint:gosec // see import
		return sum[:]
	}
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func (v *Verifier) certificate(ctx context.Context, certURL string) (*x509.Certificate, error) {
	if err := CheckSNSURL(certURL); err != nil {
		return nil, fmt.Errorf("signing certificate: %w", err)
	}

	v.mu.Lock()
	cert, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cert, nil
	}

	data, err := v.fetch(ctx, certURL)
	if err != nil {
		return nil, fmt.Errorf("fetch signing certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("signing certificate is not PEM")
	}
	cert, err = x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing certificate: %w", err)
	}

	v.mu.Lock()
	v.certs[certURL] = cert
	v.mu.Unlock()
	return cert, nil
}
