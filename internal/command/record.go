// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/differ"
	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/output"
	"github.com/staranto/redline/internal/store"
	"github.com/staranto/redline/internal/transform"
)

// recordFetch diffs BASE against TO and stores the result as a revision by
// AUTHOR.
func recordFetch(ctx context.Context, cmd *cli.Command) (*Dataset, error) {
	author := cmd.Args().Get(0)
	if author == "" {
		return nil, fmt.Errorf("record needs an author")
	}
	base, err := loadDoc(cmd, cmd.Args().Get(1))
	if err != nil {
		return nil, err
	}
	to, err := loadDoc(cmd, cmd.Args().Get(2))
	if err != nil {
		return nil, err
	}

	tr, err := differ.Diff(base, to, diffOptions(cmd))
	if err != nil {
		return nil, err
	}
	r, err := putRecord(ctx, cmd, store.KindRevision, author, tr, nil)
	if err != nil {
		return nil, err
	}
	return recordDataset(r)
}

// recordDataset lists a single record, or its JSON for raw output.
func recordDataset(r *store.Record) (*Dataset, error) {
	rows, err := json.Marshal([]store.Meta{store.MetaOf(r)})
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &Dataset{Rows: rows, Raw: raw, Attrs: output.RecordAttrs}, nil
}

func listFetch(ctx context.Context, cmd *cli.Command) (*Dataset, error) {
	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	metas, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	if metas == nil {
		metas = []store.Meta{}
	}
	rows, err := json.Marshal(metas)
	if err != nil {
		return nil, err
	}
	return &Dataset{Rows: rows, Attrs: output.RecordAttrs, Footer: fmt.Sprintf("%d records", len(metas))}, nil
}

// showFetch resolves a record id or unique prefix. Text, json and yaml
// output list its steps. Raw output is the document the record ends in.
func showFetch(ctx context.Context, cmd *cli.Command) (*Dataset, error) {
	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	r, err := store.Lookup(ctx, st, cmd.Args().First())
	if err != nil {
		return nil, err
	}

	tr, err := transform.UnmarshalJSON(schema, r.Transform)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", short(r.ID), err)
	}
	ds, err := transformDataset(tr, fmt.Sprintf("%d steps", len(tr.Steps)))
	if err != nil {
		return nil, err
	}
	doc, err := recordDoc(r)
	if err != nil {
		return nil, err
	}
	if ds.Raw, err = json.Marshal(doc); err != nil {
		return nil, err
	}
	ds.Header = fmt.Sprintf("%s %s by %s, %s", short(r.ID), r.Kind, r.Author, humanize.Time(r.CreatedAt))
	return ds, nil
}

// recordCommandBuilder constructs the cli.Command for "record".
func recordCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "record",
		Usage:     "store the revision from BASE to TO",
		UsageText: "redline record [options] AUTHOR BASE TO",
		Flags:     append(NewDiffFlags(meta.Config.Source), NewSelectFlag(), NewStoreFlag()),
		MinArgs:   3,
		MaxArgs:   3,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("record", recordFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}

// listCommandBuilder constructs the cli.Command for "list".
func listCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "list",
		Usage:     "list stored records",
		UsageText: "redline list [options]",
		Flags:     []cli.Flag{NewStoreFlag()},
		MinArgs:   0,
		MaxArgs:   0,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("list", listFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}

// showCommandBuilder constructs the cli.Command for "show".
func showCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "show",
		Usage:     "show a stored record",
		UsageText: "redline show [options] ID",
		Flags:     []cli.Flag{NewStoreFlag()},
		MinArgs:   1,
		MaxArgs:   1,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("show", showFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}
