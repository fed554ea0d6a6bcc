// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

type nodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*nodeJSON    `json:"content,omitempty"`
	Text    *string        `json:"text,omitempty"`
	Marks   []markJSON     `json:"marks,omitempty"`
}

type markJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type sliceJSON struct {
	Content   []*nodeJSON `json:"content,omitempty"`
	OpenStart int         `json:"openStart,omitempty"`
	OpenEnd   int         `json:"openEnd,omitempty"`
}

func (n *Node) toJSON() *nodeJSON {
	out := &nodeJSON{Type: n.Type.Name}
	if len(n.Attrs) > 0 {
		out.Attrs = n.Attrs
	}
	if n.IsText() {
		text := n.Text
		out.Text = &text
	}
	out.Content = fragmentToJSON(n.Content)
	out.Marks = marksToJSON(n.Marks)
	return out
}

func fragmentToJSON(f Fragment) []*nodeJSON {
	if len(f.nodes) == 0 {
		return nil
	}
	out := make([]*nodeJSON, len(f.nodes))
	for i, c := range f.nodes {
		out[i] = c.toJSON()
	}
	return out
}

func marksToJSON(marks []Mark) []markJSON {
	if len(marks) == 0 {
		return nil
	}
	out := make([]markJSON, len(marks))
	for i, m := range marks {
		out[i] = m.toJSON()
	}
	return out
}

func (m Mark) toJSON() markJSON {
	out := markJSON{Type: m.Type.Name}
	if len(m.Attrs) > 0 {
		out.Attrs = m.Attrs
	}
	return out
}

// MarshalJSON encodes the node as
// {"type":..,"attrs":{..},"content":[..],"text":..,"marks":[..]}.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

// MarshalJSON encodes the mark as {"type":..,"attrs":{..}}.
func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.toJSON())
}

// MarshalJSON encodes the slice as {"content":[..],"openStart":..,"openEnd":..}.
func (s Slice) MarshalJSON() ([]byte, error) {
	return json.Marshal(sliceJSON{
		Content:   fragmentToJSON(s.Content),
		OpenStart: s.OpenStart,
		OpenEnd:   s.OpenEnd,
	})
}

// NodeFromJSON decodes and validates a node.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}
	n, err := s.nodeFromJSON(&raw)
	if err != nil {
		return nil, err
	}
	if err := n.Check(); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkFromJSON decodes a mark.
func (s *Schema) MarkFromJSON(data []byte) (Mark, error) {
	var raw markJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mark{}, fmt.Errorf("decoding mark: %w", err)
	}
	return s.markFromJSON(raw)
}

// SliceFromJSON decodes a slice. An empty or null input is the empty slice.
func (s *Schema) SliceFromJSON(data []byte) (Slice, error) {
	if len(data) == 0 || string(data) == "null" {
		return EmptySlice, nil
	}
	var raw sliceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return EmptySlice, fmt.Errorf("decoding slice: %w", err)
	}
	content, err := s.fragmentFromJSON(raw.Content)
	if err != nil {
		return EmptySlice, err
	}
	if raw.OpenStart < 0 || raw.OpenEnd < 0 {
		return EmptySlice, &ValidationError{Type: "slice", Reason: "negative open depth"}
	}
	return NewSlice(content, raw.OpenStart, raw.OpenEnd), nil
}

func (s *Schema) nodeFromJSON(raw *nodeJSON) (*Node, error) {
	if raw == nil {
		return nil, &ValidationError{Type: "node", Reason: "null node"}
	}
	t := s.Nodes[raw.Type]
	if t == nil {
		return nil, &ValidationError{Type: raw.Type, Reason: "unknown node type"}
	}
	marks := make([]Mark, 0, len(raw.Marks))
	for _, rm := range raw.Marks {
		m, err := s.markFromJSON(rm)
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	if t.IsText() {
		if raw.Text == nil || *raw.Text == "" {
			return nil, ErrEmptyText
		}
		if len(raw.Content) > 0 {
			return nil, &ValidationError{Type: t.Name, Reason: "text nodes cannot have content"}
		}
		return s.Text(*raw.Text, marks...)
	}
	if raw.Text != nil {
		return nil, &ValidationError{Type: t.Name, Reason: "only text nodes carry text"}
	}
	content, err := s.fragmentFromJSON(raw.Content)
	if err != nil {
		return nil, err
	}
	return t.Create(raw.Attrs, content, marks...)
}

func (s *Schema) fragmentFromJSON(raw []*nodeJSON) (Fragment, error) {
	nodes := make([]*Node, 0, len(raw))
	for _, rc := range raw {
		child, err := s.nodeFromJSON(rc)
		if err != nil {
			return EmptyFragment, err
		}
		nodes = append(nodes, child)
	}
	return NewFragment(nodes...), nil
}

func (s *Schema) markFromJSON(raw markJSON) (Mark, error) {
	mt := s.Marks[raw.Type]
	if mt == nil {
		return Mark{}, &ValidationError{Type: raw.Type, Reason: "unknown mark type"}
	}
	return mt.Create(raw.Attrs)
}

// Hash returns the hex blake2b-256 digest of the node's JSON encoding. Equal
// trees hash equally.
func (n *Node) Hash() string {
	data, err := n.MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("hashing node: %v", err))
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
