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

package serializer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/eks-patterns/eksops/pkg/errors"
)

// S3URIScheme prefixes object destinations such as s3://bucket/key.
const S3URIScheme = "s3://"

// ObjectPutter is the subset of the S3 API used by S3Writer.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer serializes a value and stores it as a single S3 object.
type S3Writer struct {
	client ObjectPutter
	bucket string
	key    string
	format Format
}

// NewS3Writer creates a writer for bucket/key. An unknown format falls back to JSON.
func NewS3Writer(client ObjectPutter, bucket, key string, format Format) *S3Writer {
	return &S3Writer{
		client: client,
		bucket: bucket,
		key:    key,
		format: normalize(format),
	}
}

// Location returns the s3:// URI the writer targets.
func (w *S3Writer) Location() string {
	return S3URIScheme + w.bucket + "/" + w.key
}

// Serialize encodes v and uploads it with the content type of the format.
func (w *S3Writer) Serialize(ctx context.Context, v any) error {
	if w.client == nil {
		return errors.New(errors.ErrCodeInternal, "s3 client is nil")
	}
	if w.bucket == "" || w.key == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "bucket and key are required")
	}

	content, err := Marshal(w.format, v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to serialize object", err)
	}

	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(w.format.ContentType()),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", w.Location(), errors.FromAWS("s3:PutObject", err))
	}

	slog.Info("object uploaded",
		"bucket", w.bucket,
		"key", w.key,
		"format", w.format,
		"size", len(content))
	return nil
}

// Close is a no-op; S3Writer holds no resources.
func (w *S3Writer) Close() error {
	return nil
}

// ParseS3URI splits s3://bucket/key into its components. The key may be
// empty, in which case callers treat the remainder as a prefix.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, S3URIScheme) {
		return "", "", fmt.Errorf("invalid S3 URI: must start with %s", S3URIScheme)
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, S3URIScheme), "/")
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URI: bucket cannot be empty")
	}
	return bucket, strings.TrimSpace(key), nil
}
