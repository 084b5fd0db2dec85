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

package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// FromAWS wraps an AWS SDK error into a StructuredError, mapping the API
// error code onto an ErrorCode. The operation name is kept in the context.
// A nil error returns nil.
func FromAWS(op string, err error) error {
	if err == nil {
		return nil
	}

	ctx := map[string]any{"operation": op}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapWithContext(ErrCodeTimeout, op+" timed out", err, ctx)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return WrapWithContext(ErrCodeInternal, op+" failed", err, ctx)
	}

	ctx["awsCode"] = apiErr.ErrorCode()
	return WrapWithContext(classifyAPICode(apiErr.ErrorCode()), op+" failed", err, ctx)
}

func classifyAPICode(code string) ErrorCode {
	switch {
	case strings.HasPrefix(code, "AccessDenied"),
		strings.HasPrefix(code, "UnauthorizedOperation"),
		code == "ExpiredToken",
		code == "InvalidClientTokenId":
		return ErrCodeUnauthorized
	case strings.Contains(code, "NotFound"),
		code == "NoSuchBucket",
		code == "InvalidInstanceID.Malformed":
		return ErrCodeNotFound
	case strings.HasPrefix(code, "Throttling"),
		code == "RequestLimitExceeded",
		code == "TooManyRequestsException",
		code == "SlowDown":
		return ErrCodeThrottled
	case strings.HasPrefix(code, "Invalid"),
		code == "ValidationException",
		code == "MissingParameter":
		return ErrCodeInvalidRequest
	case code == "ServiceUnavailable", code == "InternalError", code == "InternalFailure":
		return ErrCodeUnavailable
	case strings.Contains(code, "AlreadyExists"), code == "IdempotentParameterMismatch":
		return ErrCodeConflict
	default:
		return ErrCodeInternal
	}
}
