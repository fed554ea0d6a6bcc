// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/staranto/redline/internal/model"
)

// view is the form of doc that is compared against the target. Annotated
// documents are compared without their soft deleted content and annotation
// marks, and mark differences are left out when marks are reconciled
// separately.
func (b *builder) view(doc *model.Node) *model.Node {
	if b.opts.Annotate {
		doc = logical(b.schema, doc)
	}
	if b.opts.SeparateMarks {
		doc = doc.StripMarks()
	}
	return doc
}

// logical drops deletion marked inline content and annotation marks.
func logical(s *model.Schema, n *model.Node) *model.Node {
	if n.ChildCount() == 0 {
		return n.Mark(plainMarks(s, n.Marks))
	}
	children := make([]*model.Node, 0, n.ChildCount())
	for _, c := range n.Content.Children() {
		if c.IsInline() && isDeleted(s, c) {
			continue
		}
		children = append(children, logical(s, c))
	}
	return n.Copy(model.NewFragment(children...))
}

func plainMarks(s *model.Schema, marks []model.Mark) []model.Mark {
	var out []model.Mark
	for _, m := range marks {
		if !s.IsAnnotation(m.Type) {
			out = append(out, m)
		}
	}
	return out
}

func isDeleted(s *model.Schema, n *model.Node) bool {
	_, ok := s.Deletion.IsInSet(n.Marks)
	return ok
}

// deletedRanges returns the sorted, coalesced ranges of deletion marked
// inline content.
func deletedRanges(s *model.Schema, doc *model.Node) [][2]int {
	var out [][2]int
	doc.Descendants(func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		if isDeleted(s, n) {
			end := pos + n.NodeSize()
			if k := len(out); k > 0 && out[k-1][1] == pos {
				out[k-1][1] = end
			} else {
				out = append(out, [2]int{pos, end})
			}
		}
		return false
	})
	return out
}

// toActual maps a logical position to the annotated document. A deleted
// range sitting exactly at pos is skipped over when right is set.
func toActual(ranges [][2]int, pos int, right bool) int {
	shift := 0
	for _, r := range ranges {
		at := r[0] - shift
		if at > pos || (at == pos && !right) {
			break
		}
		shift += r[1] - r[0]
	}
	return pos + shift
}

// markInserted adds the insertion mark to inline content whose parent
// allows marks.
func markInserted(s *model.Schema, f model.Fragment, allows bool) model.Fragment {
	ins := s.Insertion.M(nil)
	children := make([]*model.Node, f.ChildCount())
	for i, c := range f.Children() {
		switch {
		case c.IsInline():
			if allows {
				c = c.Mark(ins.AddToSet(c.Marks))
			}
		case c.ChildCount() > 0:
			c = c.Copy(markInserted(s, c.Content, c.Type.AllowsMarks()))
		}
		children[i] = c
	}
	return model.NewFragment(children...)
}
