// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"encoding/json"
	"fmt"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
)

// Transform records a sequence of steps applied to a base document. Docs[i]
// is the document Steps[i] was applied to and Doc is the current result.
type Transform struct {
	Base  *model.Node
	Doc   *model.Node
	Steps []Step
	Docs  []*model.Node

	mapping *Mapping
}

// New starts a transform on base.
func New(base *model.Node) *Transform {
	return &Transform{Base: base, Doc: base, mapping: NewMapping()}
}

// Step applies s and records it.
func (tr *Transform) Step(s Step) error {
	doc, err := s.Apply(tr.Doc)
	if err != nil {
		return err
	}
	tr.addStep(s, doc)
	return nil
}

// MaybeStep applies s and records it when it applies cleanly. It reports
// whether the step was recorded.
func (tr *Transform) MaybeStep(s Step) bool {
	doc, err := s.Apply(tr.Doc)
	if err != nil {
		log.Tracef("transform: dropping step %s: %v", Describe(s), err)
		return false
	}
	tr.addStep(s, doc)
	return true
}

func (tr *Transform) addStep(s Step, doc *model.Node) {
	tr.Docs = append(tr.Docs, tr.Doc)
	tr.Steps = append(tr.Steps, s)
	tr.mapping.AppendMap(s.GetMap(), -1)
	tr.Doc = doc
}

// Mapping returns the mapping from positions in Base to positions in Doc.
func (tr *Transform) Mapping() *Mapping {
	return tr.mapping
}

// DocChanged reports whether any step was recorded.
func (tr *Transform) DocChanged() bool {
	return len(tr.Steps) > 0
}

// Len is the number of recorded steps.
func (tr *Transform) Len() int {
	return len(tr.Steps)
}

// Replace replaces [from, to) with slice. Nothing is recorded when both are
// empty.
func (tr *Transform) Replace(from, to int, slice model.Slice) error {
	if from == to && slice.Size() == 0 && slice.Content.Size() == 0 {
		return nil
	}
	return tr.Step(NewReplaceStep(from, to, slice))
}

// Insert inserts nodes at pos.
func (tr *Transform) Insert(pos int, nodes ...*model.Node) error {
	return tr.Replace(pos, pos, model.NewSlice(model.NewFragment(nodes...), 0, 0))
}

// Delete removes [from, to).
func (tr *Transform) Delete(from, to int) error {
	return tr.Replace(from, to, model.EmptySlice)
}

// AddMark adds mark to the inline content in [from, to).
func (tr *Transform) AddMark(from, to int, mark model.Mark) error {
	if from >= to {
		return nil
	}
	return tr.Step(AddMarkStep(from, to, mark))
}

// RemoveMark removes mark from the inline content in [from, to).
func (tr *Transform) RemoveMark(from, to int, mark model.Mark) error {
	if from >= to {
		return nil
	}
	return tr.Step(RemoveMarkStep(from, to, mark))
}

// Invert returns the transform that turns Doc back into Base.
func (tr *Transform) Invert() (*Transform, error) {
	inv := New(tr.Doc)
	for i := len(tr.Steps) - 1; i >= 0; i-- {
		if err := inv.Step(tr.Steps[i].Invert(tr.Docs[i])); err != nil {
			return nil, fmt.Errorf("inverting step %d: %w", i, err)
		}
	}
	return inv, nil
}

type transformJSON struct {
	Base  *model.Node       `json:"base"`
	Steps []json.RawMessage `json:"steps"`
}

// MarshalJSON encodes the transform as {"base":..,"steps":[..]}.
func (tr *Transform) MarshalJSON() ([]byte, error) {
	out := transformJSON{Base: tr.Base, Steps: make([]json.RawMessage, 0, len(tr.Steps))}
	for _, s := range tr.Steps {
		data, err := s.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Steps = append(out.Steps, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a transform and replays its steps on the base.
func UnmarshalJSON(schema *model.Schema, data []byte) (*Transform, error) {
	var raw struct {
		Base  json.RawMessage   `json:"base"`
		Steps []json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding transform: %w", err)
	}
	if len(raw.Base) == 0 {
		return nil, fmt.Errorf("decoding transform: missing base document")
	}
	base, err := schema.NodeFromJSON(raw.Base)
	if err != nil {
		return nil, fmt.Errorf("decoding transform base: %w", err)
	}
	tr := New(base)
	for i, rs := range raw.Steps {
		s, err := StepFromJSON(schema, rs)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if err := tr.Step(s); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return tr, nil
}
