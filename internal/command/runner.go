// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/output"
)

// Dataset is what a command produces for output. Rows is a JSON array that
// text, json and yaml output render through Attrs. Raw, when set, replaces
// Rows for --output raw. Err is returned once the dataset has been written.
type Dataset struct {
	Rows   []byte
	Raw    []byte
	Attrs  string
	Header string
	Footer string
	Err    error
}

// ActionRunner encapsulates the common action pattern for dataset
// commands: GetMeta, fetching, the --keys short circuit, BuildAttrs and
// output emission. Fetching is provided by FetchFn.
type ActionRunner struct {
	CommandName string
	FetchFn     func(context.Context, *cli.Command) (*Dataset, error)
}

// NewActionRunner creates an ActionRunner.
func NewActionRunner(
	commandName string,
	fetchFn func(context.Context, *cli.Command) (*Dataset, error),
) *ActionRunner {
	return &ActionRunner{CommandName: commandName, FetchFn: fetchFn}
}

// Run executes the action with the provided context and command.
func (ar *ActionRunner) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("executing %s for %v in %s (config %s)", ar.CommandName, m.Args, m.StartingDir, m.Config.Source)

	ds, err := ar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if cmd.Bool("keys") {
		output.DumpKeys(w, ds.Rows, 2)
		return ds.Err
	}

	al, err := BuildAttrs(cmd, ds.Attrs)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	opts := output.OptionsFrom(cmd)
	opts.Header, opts.Footer = ds.Header, ds.Footer

	raw := ds.Rows
	if opts.Format == "raw" && ds.Raw != nil {
		raw = ds.Raw
	}
	if err := output.SliceDiceSpit(raw, al, opts, w); err != nil {
		return err
	}
	return ds.Err
}
