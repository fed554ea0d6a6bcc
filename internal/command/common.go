// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/attrs"
	"github.com/staranto/redline/internal/driller"
	"github.com/staranto/redline/internal/merge"
	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/store"
	"github.com/staranto/redline/internal/transform"
)

// schema is the document schema every command reads and writes.
var schema = model.DefaultSchema()

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// StdinArg stands in for a "-" argument. The flag parser stops at a lone
// "-" and drops every argument after it.
const StdinArg = "<stdin>"

// StdinArgs returns a copy of args with each "-" after the command name
// replaced by StdinArg.
func StdinArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 2; i < len(out); i++ {
		if out[i] == "-" {
			out[i] = StdinArg
		}
	}
	return out
}

// readInput reads path, or the root command's reader when path is "-" or
// StdinArg.
func readInput(cmd *cli.Command, path string) ([]byte, error) {
	if path == "-" || path == StdinArg {
		return io.ReadAll(cmd.Root().Reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// loadDoc reads a document. With --select the document is the value at that
// path.
func loadDoc(cmd *cli.Command, path string) (*model.Node, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	if sel := cmd.String("select"); sel != "" {
		r := driller.Drill(data, sel)
		if !r.Exists() {
			return nil, fmt.Errorf("%s: nothing at %q", path, sel)
		}
		data = []byte(r.Raw)
	}
	doc, err := schema.NodeFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func loadTransform(cmd *cli.Command, path string) (*transform.Transform, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	tr, err := transform.UnmarshalJSON(schema, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// loadRevision reads either a revision ({"author","base","transform"}) or a
// bare transform, whose author is then the file's base name.
func loadRevision(cmd *cli.Command, path string) (*merge.Revision, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(data, "transform").Exists() {
		r, err := merge.UnmarshalRevision(schema, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return r, nil
	}
	tr, err := transform.UnmarshalJSON(schema, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	author := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return merge.NewRevision(author, tr), nil
}

// openStore opens the store named by --store, or the configured one.
func openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	return store.New(ctx, cmd.String("store"))
}

// recordDoc is the document a record ends in: its merge result, or its
// transform replayed.
func recordDoc(r *store.Record) (*model.Node, error) {
	if len(r.Result) > 0 {
		return schema.NodeFromJSON(r.Result)
	}
	tr, err := transform.UnmarshalJSON(schema, r.Transform)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return tr.Doc, nil
}

func recordRevision(r *store.Record) (*merge.Revision, error) {
	tr, err := transform.UnmarshalJSON(schema, r.Transform)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return &merge.Revision{Author: r.Author, Base: r.BaseHash, Transform: tr}, nil
}

// putRecord seals and stores a record built from tr.
func putRecord(ctx context.Context, cmd *cli.Command, kind store.Kind, author string, tr *transform.Transform, result *model.Node) (*store.Record, error) {
	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	r := &store.Record{Kind: kind, Author: author, BaseHash: tr.Base.Hash(), Transform: body}
	if result != nil {
		if r.Result, err = json.Marshal(result); err != nil {
			return nil, err
		}
	}
	if _, err := st.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
