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


package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/eks-patterns/eksops/pkg/k8s/client"
	"github.com/eks-patterns/eksops/pkg/k8s/node"
)

// NotReadyReport lists the nodes whose Ready condition is not True.
type NotReadyReport struct {
	Count int      `json:"count" yaml:"count"`
	Nodes []string `json:"nodes" yaml:"nodes"`
}

func nodesCmd() *cli.Command {
	return &cli.Command{
		Name:  "nodes",
		Usage: "Inspect cluster nodes",
		Flags: []cli.Flag{
			kubeconfigFlag(),
			eksClusterFlag(),
			outputFlag(),
			formatFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "not-ready",
				Usage: "List nodes whose Ready condition is not True",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Stop after this many not ready nodes (0 means no limit)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, err := kubeClient(ctx, cmd)
					if err != nil {
						return err
					}
					rep, err := notReadyReport(ctx, c, cmd.Int("limit"))
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, rep)
				},
			},
			{
				Name:      "get",
				Usage:     "Show the latest condition and addresses of a node",
				ArgsUsage: "NODE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					nodeName := cmd.Args().First()
					if nodeName == "" {
						return fmt.Errorf("node name is required")
					}
					c, err := kubeClient(ctx, cmd)
					if err != nil {
						return err
					}
					info, err := node.GetInfo(ctx, c, nodeName)
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, info)
				},
			},
			{
				Name:  "list",
				Usage: "List nodes with role, readiness, age and instance id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "selector",
						Aliases: []string{"l"},
						Usage:   "Label selector to filter nodes",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, err := kubeClient(ctx, cmd)
					if err != nil {
						return err
					}
					nodes, err := node.Summary(ctx, node.ListOptions{
						Client:        c,
						LabelSelector: cmd.String("selector"),
					})
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, nodes)
				},
			},
		},
	}
}

func notReadyReport(ctx context.Context, c client.Interface, limit int) (*NotReadyReport, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}
	names, err := node.ListNotReady(ctx, node.NotReadyOptions{Client: c, Limit: limit})
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return &NotReadyReport{Count: len(names), Nodes: names}, nil
}
