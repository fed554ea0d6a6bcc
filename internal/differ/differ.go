// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/textdiff"
	"github.com/staranto/redline/internal/transform"
)

// DefaultMaxSize is the input size limit, in positions, used when
// Options.MaxSize is zero.
const DefaultMaxSize = 100000

// Options control how Diff compares documents.
//
// Fields:
//   - Granularity: unit text changes are computed in.
//   - SeparateMarks: compare content without marks, then emit mark steps
//     for the mark differences.
//   - Annotate: keep removed text under the deletion mark and mark inserted
//     content with the insertion mark instead of editing plainly.
//   - MaxSize: largest accepted input size in positions. Zero selects
//     DefaultMaxSize and a negative value disables the check.
//   - Simplify: fold adjacent steps before returning.
type Options struct {
	Granularity   textdiff.Granularity
	SeparateMarks bool
	Annotate      bool
	MaxSize       int
	Simplify      bool
}

// Diff returns a transform whose steps turn from into to. Without Annotate
// the transform's document equals to. With Annotate it equals to once
// deletion marked content is dropped and annotation marks are stripped.
func Diff(from, to *model.Node, opts Options) (*transform.Transform, error) {
	if from == nil || to == nil {
		return nil, &DiffError{Reason: "missing document"}
	}
	schema := from.Type.Schema
	if to.Type.Schema != schema {
		return nil, &DiffError{Reason: "documents use different schemas"}
	}

	limit := opts.MaxSize
	if limit == 0 {
		limit = DefaultMaxSize
	}
	if size := max(from.Content.Size(), to.Content.Size()); limit > 0 && size > limit {
		return nil, &DiffError{Reason: fmt.Sprintf("%d positions, limit %d", size, limit), Err: ErrTooLarge}
	}
	if opts.Annotate && (schema.Insertion == nil || schema.Deletion == nil) {
		return nil, &DiffError{Reason: "schema has no annotation marks"}
	}

	log.Debugf("differ: diffing %d -> %d positions, %s", from.Content.Size(), to.Content.Size(), opts.Granularity)

	b := newBuilder(from, to, opts)
	if err := b.content(); err != nil {
		return nil, err
	}
	if opts.SeparateMarks {
		if err := b.marks(); err != nil {
			return nil, err
		}
	}
	if !opts.Annotate && !b.tr.Doc.Eq(to) {
		log.Debugf("differ: result differs from target, appending replace")
		if err := b.replace(b.tr.Doc, to); err != nil {
			return nil, err
		}
	}

	tr := b.tr
	if opts.Simplify {
		simplified, err := transform.Simplify(tr)
		if err != nil {
			return nil, &DiffError{Reason: "simplifying", Err: err}
		}
		tr = simplified
	}

	log.Debugf("differ: %d steps", tr.Len())
	return tr, nil
}
