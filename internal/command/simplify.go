// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/transform"
)

func simplifyFetch(_ context.Context, cmd *cli.Command) (*Dataset, error) {
	tr, err := loadTransform(cmd, cmd.Args().First())
	if err != nil {
		return nil, err
	}
	simple, err := transform.Simplify(tr)
	if err != nil {
		return nil, err
	}
	return transformDataset(simple, fmt.Sprintf("%d steps, was %d", len(simple.Steps), len(tr.Steps)))
}

// simplifyCommandBuilder constructs the cli.Command for "simplify".
func simplifyCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "simplify",
		Usage:     "fold adjacent steps of a transform",
		UsageText: "redline simplify [options] TRANSFORM",
		MinArgs:   1,
		MaxArgs:   1,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("simplify", simplifyFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}
