// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"encoding/json"
	"fmt"

	"github.com/staranto/redline/internal/model"
)

// Step is an atomic change to a document. Positions in a step only make sense
// for the document it was created for. The implementations are *ReplaceStep
// and *MarkStep.
type Step interface {
	// Apply applies the step, failing when the result would not be a valid
	// document.
	Apply(doc *model.Node) (*model.Node, error)

	// GetMap returns the map from positions before the step to positions
	// after it.
	GetMap() *StepMap

	// Invert returns the step that undoes this one. doc is the document the
	// step was applied to.
	Invert(doc *model.Node) Step

	// Map returns the step with positions mapped through m, or nil when the
	// content the step touched was deleted.
	Map(m Mappable) Step

	// Merge combines the step with other, applied directly after it.
	Merge(other Step) (Step, bool)

	// Range returns the span of the step in the document it applies to.
	Range() (from, to int)

	json.Marshaler
}

// stepJSON is the wire shape of every step kind.
type stepJSON struct {
	StepType string          `json:"stepType"`
	From     int             `json:"from"`
	To       int             `json:"to"`
	Slice    json.RawMessage `json:"slice,omitempty"`
	Mark     json.RawMessage `json:"mark,omitempty"`
}

// StepFromJSON decodes a step.
func StepFromJSON(schema *model.Schema, data []byte) (Step, error) {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding step: %w", err)
	}
	if raw.From < 0 || raw.To < raw.From {
		return nil, fmt.Errorf("decoding step: invalid range %d-%d", raw.From, raw.To)
	}

	switch raw.StepType {
	case "replace":
		slice, err := schema.SliceFromJSON(raw.Slice)
		if err != nil {
			return nil, fmt.Errorf("decoding replace step: %w", err)
		}
		return NewReplaceStep(raw.From, raw.To, slice), nil
	case "addMark", "removeMark":
		mark, err := schema.MarkFromJSON(raw.Mark)
		if err != nil {
			return nil, fmt.Errorf("decoding %s step: %w", raw.StepType, err)
		}
		return &MarkStep{From: raw.From, To: raw.To, Mark: mark, Add: raw.StepType == "addMark"}, nil
	default:
		return nil, fmt.Errorf("decoding step: unknown step type %q", raw.StepType)
	}
}

// Describe returns a short human readable summary of a step.
func Describe(s Step) string {
	switch st := s.(type) {
	case *ReplaceStep:
		switch {
		case st.From == st.To:
			return fmt.Sprintf("insert %s at %d", st.Slice.Content, st.From)
		case st.Slice.Size() == 0 && st.Slice.Content.Size() == 0:
			return fmt.Sprintf("delete %d-%d", st.From, st.To)
		default:
			return fmt.Sprintf("replace %d-%d with %s", st.From, st.To, st.Slice.Content)
		}
	case *MarkStep:
		verb := "remove"
		if st.Add {
			verb = "add"
		}
		return fmt.Sprintf("%s mark %s %d-%d", verb, st.Mark, st.From, st.To)
	default:
		return fmt.Sprintf("%T", s)
	}
}

// Kind returns the wire name of a step's type.
func Kind(s Step) string {
	switch st := s.(type) {
	case *ReplaceStep:
		return "replace"
	case *MarkStep:
		if st.Add {
			return "addMark"
		}
		return "removeMark"
	default:
		return "unknown"
	}
}
