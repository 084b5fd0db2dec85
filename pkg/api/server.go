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


package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eks-patterns/eksops/pkg/awsclient"
	"github.com/eks-patterns/eksops/pkg/config"
	"github.com/eks-patterns/eksops/pkg/logging"
	"github.com/eks-patterns/eksops/pkg/nodelog"
	"github.com/eks-patterns/eksops/pkg/server"
)

const (
	name           = "nodelogd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/eks-patterns/eksops/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the SNS endpoint and blocks until ctx is canceled.
// Settings come from the environment; see config.LoadNodeLog and
// server.NewConfig.
func Serve(ctx context.Context) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	s, err := NewServer(ctx, nil, server.WithName(name), server.WithVersion(version))
	if err != nil {
		return err
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// NewServer loads NodeLog settings on top of base, connects to AWS in the
// cluster region and returns a server routing SNS notifications to a
// nodelog Router. Options are applied after the event handler is set.
func NewServer(ctx context.Context, base *config.NodeLog, opts ...server.Option) (*server.Server, error) {
	cfg, err := config.LoadNodeLog(base)
	if err != nil {
		return nil, err
	}
	return NewServerFromConfig(ctx, cfg, opts...)
}

// NewServerFromConfig is NewServer for settings that are already resolved
// and validated.
func NewServerFromConfig(ctx context.Context, cfg *config.NodeLog, opts ...server.Option) (*server.Server, error) {
	awsCfg, err := awsclient.Load(ctx, cfg.ClusterRegion)
	if err != nil {
		return nil, err
	}

	router, err := nodelog.NewFromConfig(cfg, awsclient.New(awsCfg), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build node log router: %w", err)
	}

	return NewServerWithHandler(router, opts...), nil
}

// NewServerWithHandler returns a server routing SNS notifications to h.
func NewServerWithHandler(h server.EventHandler, opts ...server.Option) *server.Server {
	all := make([]server.Option, 0, len(opts)+1)
	all = append(all, server.WithEventHandler(h))
	all = append(all, opts...)
	return server.New(all...)
}
