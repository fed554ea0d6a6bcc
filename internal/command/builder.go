// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/meta"
)

// CommandBuilder constructs a cli.Command for dataset subcommands using a
// consistent pattern. It wires metadata, appends the global output flags
// and checks the positional argument count before the action runs.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	// MinArgs and MaxArgs bound the positional arguments. A negative MaxArgs
	// means no upper bound.
	MinArgs int
	MaxArgs int
	Action  func(context.Context, *cli.Command) error
	Meta    meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: append(cb.Flags, NewGlobalFlags(cb.Name, cb.Meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, cb.checkArgs(c)
		},
		Action: cb.Action,
	}
}

func (cb *CommandBuilder) checkArgs(c *cli.Command) error {
	n := c.Args().Len()
	if n < cb.MinArgs || (cb.MaxArgs >= 0 && n > cb.MaxArgs) {
		return fmt.Errorf("usage: %s", cb.UsageText)
	}
	return nil
}
