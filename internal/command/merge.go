// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/merge"
	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/output"
	"github.com/staranto/redline/internal/store"
	"github.com/staranto/redline/internal/transform"
)

// mergeFetch merges the revisions onto BASE. Text, json and yaml output list
// the per-revision outcomes, or the conflicts with --conflicts. Raw output
// is the merged document. Unresolved conflicts fail the command after the
// output is written.
func mergeFetch(ctx context.Context, cmd *cli.Command) (*Dataset, error) {
	args := cmd.Args().Slice()
	base, err := loadDoc(cmd, args[0])
	if err != nil {
		return nil, err
	}

	revs, err := mergeRevisions(ctx, cmd, args[1:])
	if err != nil {
		return nil, err
	}

	resolutions, err := parseResolutions(cmd, cmd.StringSlice("resolve"))
	if err != nil {
		return nil, err
	}

	sess, err := merge.Merge(base, revs, resolutions, merge.Options{
		StopOnConflict: cmd.Bool("stop-on-conflict"),
	})
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Attrs: output.OutcomeAttrs, Err: sess.Err()}
	if cmd.Bool("conflicts") {
		ds.Attrs = output.ConflictAttrs
		ds.Rows, err = output.ConflictRows(sess)
	} else {
		ds.Rows, err = output.OutcomeRows(sess)
	}
	if err != nil {
		return nil, err
	}
	if ds.Raw, err = json.Marshal(sess.Result); err != nil {
		return nil, err
	}

	var clean, conflicted int
	for _, a := range sess.Applied {
		if a.Outcome == merge.Conflicted {
			conflicted++
		} else {
			clean++
		}
	}
	ds.Footer = fmt.Sprintf("%d clean, %d conflicted", clean, conflicted)

	if cmd.Bool("save") {
		tr := transform.New(base)
		for _, st := range sess.Steps {
			if err := tr.Step(st); err != nil {
				return nil, err
			}
		}
		r, err := putRecord(ctx, cmd, store.KindMerge, cmd.String("author"), tr, sess.Result)
		if err != nil {
			return nil, err
		}
		ds.Header = "saved " + short(r.ID)
	}

	return ds, nil
}

// mergeRevisions loads revision files, or stored revision records with
// --records.
func mergeRevisions(ctx context.Context, cmd *cli.Command, refs []string) ([]*merge.Revision, error) {
	revs := make([]*merge.Revision, 0, len(refs))
	if !cmd.Bool("records") {
		for _, path := range refs {
			r, err := loadRevision(cmd, path)
			if err != nil {
				return nil, err
			}
			revs = append(revs, r)
		}
		return revs, nil
	}

	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	for _, id := range refs {
		rec, err := store.Lookup(ctx, st, id)
		if err != nil {
			return nil, err
		}
		if rec.Kind != store.KindRevision {
			return nil, fmt.Errorf("record %s is a %s, not a revision", short(rec.ID), rec.Kind)
		}
		r, err := recordRevision(rec)
		if err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, nil
}

// parseResolutions reads --resolve INDEX=FILE values.
func parseResolutions(cmd *cli.Command, specs []string) (map[int]*model.Node, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[int]*model.Node, len(specs))
	for _, spec := range specs {
		idx, path, ok := strings.Cut(spec, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("--resolve %q: want INDEX=FILE", spec)
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("--resolve %q: bad revision index", spec)
		}
		doc, err := loadDoc(cmd, path)
		if err != nil {
			return nil, err
		}
		out[i] = doc
		log.Debugf("resolution for revision %d from %s", i, path)
	}
	return out, nil
}

// mergeCommandBuilder constructs the cli.Command for "merge".
func mergeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "merge",
		Usage:     "merge revisions of a base document",
		UsageText: "redline merge [options] BASE REVISION...",
		Flags: []cli.Flag{
			NewSelectFlag(),
			NewStoreFlag(),
			&cli.StringFlag{
				Name:    "author",
				Usage:   "author of a saved merge",
				Value:   os.Getenv("USER"),
				Sources: cli.EnvVars("REDLINE_AUTHOR"),
			},
			&cli.BoolFlag{
				Name:  "conflicts",
				Usage: "list conflicts instead of outcomes",
			},
			&cli.BoolFlag{
				Name:  "records",
				Usage: "revisions are record ids in the store",
			},
			&cli.StringSliceFlag{
				Name:  "resolve",
				Usage: "resolved document for a conflicting revision, as INDEX=FILE",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "save the merge to the record store",
			},
			&cli.BoolFlag{
				Name:    "stop-on-conflict",
				Usage:   "stop at the first unresolved conflict",
				Sources: sources(meta.Config.Source, "stop-on-conflict", "merge.stop_on_conflict"),
			},
		},
		MinArgs: 2,
		MaxArgs: -1,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("merge", mergeFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}
