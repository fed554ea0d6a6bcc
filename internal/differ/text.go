// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"unicode/utf8"

	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/textdiff"
	"github.com/staranto/redline/internal/transform"
)

// textEdits emits steps changing the text node at logical position start
// from oldText to newText. Adjacent removed and added segments become a
// single step.
func (b *builder) textEdits(start int, oldText, newText string, marks []model.Mark) error {
	segs := textdiff.Segments(oldText, newText, b.opts.Granularity)
	pos := start
	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		var removed, added string
		switch seg.Kind {
		case textdiff.Equal:
			pos += utf8.RuneCountInString(seg.Text)
			continue
		case textdiff.Removed:
			removed = seg.Text
		case textdiff.Added:
			added = seg.Text
		}
		if i+1 < len(segs) && segs[i+1].Kind != textdiff.Equal && segs[i+1].Kind != seg.Kind {
			i++
			if removed == "" {
				removed = segs[i].Text
			} else {
				added = segs[i].Text
			}
		}

		if err := b.textEdit(pos, removed, added, marks); err != nil {
			return err
		}
		pos += utf8.RuneCountInString(added)
	}
	return nil
}

// textEdit replaces removed at logical position pos with added. Plain
// edits delete and insert. Annotated edits keep the removed text under the
// deletion mark and put the added text under the insertion mark.
func (b *builder) textEdit(pos int, removed, added string, marks []model.Mark) error {
	from, to := pos, pos+utf8.RuneCountInString(removed)

	if !b.opts.Annotate {
		slice := model.EmptySlice
		if added != "" {
			node, err := b.schema.Text(added, marks...)
			if err != nil {
				return err
			}
			slice = model.NewSlice(model.NewFragment(node), 0, 0)
		}
		return b.step(transform.NewReplaceStep(from, to, slice))
	}

	doc := b.tr.Doc
	ranges := deletedRanges(b.schema, doc)
	aFrom := toActual(ranges, from, true)
	aTo := max(aFrom, toActual(ranges, to, false))

	var nodes []*model.Node
	if aTo > aFrom {
		old, err := doc.Slice(aFrom, aTo)
		if err != nil {
			return err
		}
		del := b.schema.Deletion.M(nil)
		for _, n := range old.Content.Children() {
			nodes = append(nodes, n.Mark(del.AddToSet(n.Marks)))
		}
	}
	if added != "" {
		node, err := b.schema.Text(added, b.schema.Insertion.M(nil).AddToSet(marks)...)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	return b.step(transform.NewReplaceStep(aFrom, aTo, model.NewSlice(model.NewFragment(nodes...), 0, 0)))
}
