// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/differ"
	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/output"
	"github.com/staranto/redline/internal/picker"
	"github.com/staranto/redline/internal/textdiff"
	"github.com/staranto/redline/internal/transform"
)

// diffCommandAction is the action handler for the "diff" subcommand. It
// computes the steps from FROM to TO, or between two stored records chosen
// with --pick, and emits them per the common flags. --structural prints the
// JSON level difference instead.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	from, to, err := diffInputs(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("structural") {
		return output.Structural(cmd.Root().Writer, from, to, output.OptionsFrom(cmd).Color)
	}

	return NewActionRunner("diff", func(_ context.Context, cmd *cli.Command) (*Dataset, error) {
		tr, err := differ.Diff(from, to, diffOptions(cmd))
		if err != nil {
			return nil, err
		}
		return transformDataset(tr, fmt.Sprintf("%d steps", len(tr.Steps)))
	}).Run(ctx, cmd)
}

// diffInputs loads the two documents to compare.
func diffInputs(ctx context.Context, cmd *cli.Command) (from, to *model.Node, err error) {
	if !cmd.Bool("pick") {
		if cmd.Args().Len() != 2 {
			return nil, nil, fmt.Errorf("usage: redline diff [options] FROM TO")
		}
		if from, err = loadDoc(cmd, cmd.Args().Get(0)); err != nil {
			return
		}
		to, err = loadDoc(cmd, cmd.Args().Get(1))
		return
	}

	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	metas, err := st.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	chosen, err := picker.Select(metas)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("picked %s and %s", chosen[0].ID, chosen[1].ID)

	var docs [2]*model.Node
	for i, m := range chosen {
		r, err := st.Get(ctx, m.ID)
		if err != nil {
			return nil, nil, err
		}
		if docs[i], err = recordDoc(r); err != nil {
			return nil, nil, err
		}
	}
	return docs[0], docs[1], nil
}

// diffOptions reads the diff flags. The granularity has already been
// validated.
func diffOptions(cmd *cli.Command) differ.Options {
	g, _ := textdiff.ParseGranularity(cmd.String("granularity"))
	return differ.Options{
		Granularity:   g,
		SeparateMarks: cmd.Bool("separate-marks"),
		Annotate:      cmd.Bool("annotate"),
		MaxSize:       cmd.Int("max-size"),
		Simplify:      cmd.Bool("simplify"),
	}
}

// transformDataset presents a transform as step rows, or its JSON for raw
// output.
func transformDataset(tr *transform.Transform, footer string) (*Dataset, error) {
	rows, err := output.StepRows(tr.Steps)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	return &Dataset{Rows: rows, Raw: raw, Attrs: output.StepAttrs, Footer: footer}, nil
}

// diffCommandBuilder constructs the cli.Command for "diff".
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "compute the steps between two documents",
		UsageText: "redline diff [options] FROM TO",
		Flags: append(NewDiffFlags(meta.Config.Source),
			NewSelectFlag(),
			NewStoreFlag(),
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "pick the two documents from the record store",
			},
			&cli.BoolFlag{
				Name:  "structural",
				Usage: "show the JSON level difference instead of steps",
			},
		),
		MinArgs: 0,
		MaxArgs: 2,
		Action:  diffCommandAction,
		Meta:    meta,
	}).Build()
}
