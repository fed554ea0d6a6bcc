// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"encoding/json"
	"fmt"

	"github.com/staranto/redline/internal/model"
)

// MarkStep adds (Add true) or removes a mark on the inline content in
// [From, To).
type MarkStep struct {
	From int
	To   int
	Mark model.Mark
	Add  bool
}

// AddMarkStep builds a step adding mark.
func AddMarkStep(from, to int, mark model.Mark) *MarkStep {
	return &MarkStep{From: from, To: to, Mark: mark, Add: true}
}

// RemoveMarkStep builds a step removing mark.
func RemoveMarkStep(from, to int, mark model.Mark) *MarkStep {
	return &MarkStep{From: from, To: to, Mark: mark}
}

func (s *MarkStep) Apply(doc *model.Node) (*model.Node, error) {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil, fmt.Errorf("applying mark %d-%d: %w", s.From, s.To, err)
	}
	rFrom, err := doc.Resolve(s.From)
	if err != nil {
		return nil, fmt.Errorf("applying mark %d-%d: %w", s.From, s.To, err)
	}
	parent := rFrom.Node(rFrom.SharedDepth(s.To))
	content := mapInline(old.Content, parent, func(n *model.Node) *model.Node {
		if s.Add {
			return n.Mark(s.Mark.AddToSet(n.Marks))
		}
		return n.Mark(s.Mark.RemoveFromSet(n.Marks))
	})
	out, err := doc.Replace(s.From, s.To, model.NewSlice(content, old.OpenStart, old.OpenEnd))
	if err != nil {
		return nil, fmt.Errorf("applying mark %d-%d: %w", s.From, s.To, err)
	}
	return out, nil
}

// mapInline applies fn to every inline leaf whose parent allows marks.
func mapInline(f model.Fragment, parent *model.Node, fn func(*model.Node) *model.Node) model.Fragment {
	children := make([]*model.Node, f.ChildCount())
	for i := range children {
		child := f.Child(i)
		if child.Content.Size() > 0 {
			child = child.Copy(mapInline(child.Content, child, fn))
		}
		if child.IsInline() && parent.Type.AllowsMarks() {
			child = fn(child)
		}
		children[i] = child
	}
	return model.NewFragment(children...)
}

func (s *MarkStep) GetMap() *StepMap {
	return EmptyMap
}

func (s *MarkStep) Invert(*model.Node) Step {
	return &MarkStep{From: s.From, To: s.To, Mark: s.Mark, Add: !s.Add}
}

func (s *MarkStep) Map(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	if (from.Deleted() && to.Deleted()) || from.Pos >= to.Pos {
		return nil
	}
	return &MarkStep{From: from.Pos, To: to.Pos, Mark: s.Mark, Add: s.Add}
}

// Merge joins mark steps of the same kind and mark whose ranges touch or
// overlap.
func (s *MarkStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*MarkStep)
	if !ok || o.Add != s.Add || !o.Mark.Eq(s.Mark) {
		return nil, false
	}
	if s.From > o.To || s.To < o.From {
		return nil, false
	}
	return &MarkStep{From: min(s.From, o.From), To: max(s.To, o.To), Mark: s.Mark, Add: s.Add}, true
}

func (s *MarkStep) Range() (int, int) {
	return s.From, s.To
}

func (s *MarkStep) MarshalJSON() ([]byte, error) {
	mark, err := s.Mark.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(stepJSON{StepType: Kind(s), From: s.From, To: s.To, Mark: mark})
}

func (s *MarkStep) String() string {
	return fmt.Sprintf("%s(%d,%d,%s)", Kind(s), s.From, s.To, s.Mark)
}
