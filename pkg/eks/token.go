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

package eks

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/eks-patterns/eksops/pkg/defaults"
	"github.com/eks-patterns/eksops/pkg/errors"
)

const (
	// TokenPrefix marks a bearer token as an EKS IAM token.
	TokenPrefix = "k8s-aws-v1."

	clusterIDHeader = "x-k8s-aws-id"
	expiresHeader   = "X-Amz-Expires"
)

// Token is a bearer token accepted by the EKS API server.
type Token struct {
	Value      string
	Expiration time.Time
}

// Presigner presigns STS GetCallerIdentity requests. *sts.PresignClient
// satisfies it.
type Presigner interface {
	PresignGetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// TokenGenerator builds EKS bearer tokens from presigned STS requests.
type TokenGenerator struct {
	presigner Presigner
	now       func() time.Time
}

// NewTokenGenerator returns a TokenGenerator using presigner.
func NewTokenGenerator(presigner Presigner) *TokenGenerator {
	return &TokenGenerator{presigner: presigner, now: time.Now}
}

// NewTokenGeneratorFromClient wraps an STS client in a presign client.
func NewTokenGeneratorFromClient(client *sts.Client) *TokenGenerator {
	return NewTokenGenerator(sts.NewPresignClient(client))
}

// Token returns a token scoped to clusterName.
func (g *TokenGenerator) Token(ctx context.Context, clusterName string) (Token, error) {
	if clusterName == "" {
		return Token{}, errors.New(errors.ErrCodeInvalidRequest, "cluster name is required")
	}

	signedAt := g.now()
	expires := strconv.Itoa(int(defaults.EKSTokenPresignExpiry / time.Second))

	req, err := g.presigner.PresignGetCallerIdentity(ctx, &sts.GetCallerIdentityInput{},
		func(po *sts.PresignOptions) {
			po.ClientOptions = append(po.ClientOptions, func(o *sts.Options) {
				o.APIOptions = append(o.APIOptions,
					smithyhttp.AddHeaderValue(clusterIDHeader, clusterName),
					smithyhttp.AddHeaderValue(expiresHeader, expires),
				)
			})
		})
	if err != nil {
		return Token{}, fmt.Errorf("failed to presign caller identity for %s: %w", clusterName, err)
	}

	return Token{
		Value: TokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(req.URL)),
		// the API server rejects tokens older than 15 minutes; keep a minute of slack
		Expiration: signedAt.Add(defaults.EKSTokenLifetime - time.Minute),
	}, nil
}
