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

package bundle

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"k8s.io/utils/clock"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/errors"
)

// Object is an uploaded log bundle.
type Object struct {
	Key          string    `json:"key" yaml:"key"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`
}

// Guard reports log bundles uploaded to the collection bucket recently.
type Guard struct {
	client awsclient.S3API
	bucket string
	prefix string
	clock  clock.PassiveClock
}

// Option configures a Guard.
type Option func(*Guard)

// WithPrefix restricts the listing to keys under prefix.
func WithPrefix(prefix string) Option {
	return func(g *Guard) {
		g.prefix = prefix
	}
}

// WithClock replaces the wall clock.
func WithClock(c clock.PassiveClock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

// NewGuard returns a Guard over bucket.
func NewGuard(client awsclient.S3API, bucket string, opts ...Option) *Guard {
	g := &Guard{
		client: client,
		bucket: bucket,
		clock:  clock.RealClock{},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Recent returns the objects modified within window of now, newest first.
func (g *Guard) Recent(ctx context.Context, window time.Duration) ([]Object, error) {
	since := g.clock.Now().Add(-window)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
	}
	if g.prefix != "" {
		input.Prefix = aws.String(g.prefix)
	}

	var objs []Object
	p := s3.NewListObjectsV2Paginator(g.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.FromAWS("s3:ListObjectsV2", err)
		}
		for _, o := range page.Contents {
			mod := aws.ToTime(o.LastModified)
			if mod.Before(since) {
				continue
			}
			objs = append(objs, Object{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: mod,
			})
		}
	}

	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].LastModified.After(objs[j].LastModified)
	})

	slog.Debug("recent bundles listed",
		"bucket", g.bucket, "prefix", g.prefix, "since", since, "count", len(objs))
	return objs, nil
}
