// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"encoding/json"
	"fmt"

	"github.com/staranto/redline/internal/model"
)

// ReplaceStep replaces [From, To) with Slice.
type ReplaceStep struct {
	From  int
	To    int
	Slice model.Slice
}

// NewReplaceStep builds a replace step.
func NewReplaceStep(from, to int, slice model.Slice) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: slice}
}

func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	out, err := doc.Replace(s.From, s.To, s.Slice)
	if err != nil {
		return nil, fmt.Errorf("applying replace %d-%d: %w", s.From, s.To, err)
	}
	return out, nil
}

func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

func (s *ReplaceStep) Invert(doc *model.Node) Step {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		panic(fmt.Sprintf("inverting replace %d-%d: %v", s.From, s.To, err))
	}
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), old)
}

func (s *ReplaceStep) Map(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	if from.DeletedAcross() && to.DeletedAcross() {
		return nil
	}
	return NewReplaceStep(from.Pos, max(from.Pos, to.Pos), s.Slice)
}

// Merge joins two replaces when other starts where this one's content ends,
// or ends where this one starts, and the slices are closed at the seam.
func (s *ReplaceStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*ReplaceStep)
	if !ok {
		return nil, false
	}
	if s.From+s.Slice.Size() == o.From && s.Slice.OpenEnd == 0 && o.Slice.OpenStart == 0 {
		slice := model.EmptySlice
		if s.Slice.Size()+o.Slice.Size() != 0 {
			slice = model.NewSlice(s.Slice.Content.Append(o.Slice.Content), s.Slice.OpenStart, o.Slice.OpenEnd)
		}
		return NewReplaceStep(s.From, s.To+(o.To-o.From), slice), true
	}
	if o.To == s.From && s.Slice.OpenStart == 0 && o.Slice.OpenEnd == 0 {
		slice := model.EmptySlice
		if s.Slice.Size()+o.Slice.Size() != 0 {
			slice = model.NewSlice(o.Slice.Content.Append(s.Slice.Content), o.Slice.OpenStart, s.Slice.OpenEnd)
		}
		return NewReplaceStep(o.From, s.To, slice), true
	}
	return nil, false
}

func (s *ReplaceStep) Range() (int, int) {
	return s.From, s.To
}

func (s *ReplaceStep) MarshalJSON() ([]byte, error) {
	out := stepJSON{StepType: "replace", From: s.From, To: s.To}
	if s.Slice.Content.Size() > 0 {
		data, err := s.Slice.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Slice = data
	}
	return json.Marshal(out)
}

func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d,%d,%s)", s.From, s.To, s.Slice)
}

// MinimalReplace returns the smallest single replace that turns from into
// to, or nil when the documents are equal. When the changed region is
// ambiguous, as with repeated content, the boundary with the lower depth is
// chosen.
func MinimalReplace(from, to *model.Node) (*ReplaceStep, error) {
	start := to.Content.FindDiffStart(from.Content)
	if start < 0 {
		return nil, nil
	}
	endA, endB, _ := to.Content.FindDiffEnd(from.Content)
	if overlap := start - min(endA, endB); overlap > 0 {
		rFrom, err := from.Resolve(start - overlap)
		if err != nil {
			return nil, err
		}
		rTo, err := to.Resolve(endA + overlap)
		if err != nil {
			return nil, err
		}
		if rFrom.Depth < rTo.Depth {
			start -= overlap
		} else {
			endA += overlap
			endB += overlap
		}
	}
	slice, err := to.Slice(start, endA)
	if err != nil {
		return nil, err
	}
	step := NewReplaceStep(start, endB, slice)

	// Open depths that cannot be joined at the chosen boundaries fall back
	// to replacing the whole content.
	if got, err := step.Apply(from); err != nil || !got.Eq(to) {
		return NewReplaceStep(0, from.Content.Size(), model.NewSlice(to.Content, 0, 0)), nil
	}
	return step, nil
}
