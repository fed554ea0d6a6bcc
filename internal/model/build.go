// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

// The helpers below build trees from Go literals and panic on invalid input.
// They exist for fixtures and tests.

// N builds a checked node of the named type.
func (s *Schema) N(name string, attrs map[string]any, children ...*Node) *Node {
	t := s.Nodes[name]
	if t == nil {
		panic(fmt.Sprintf("unknown node type %q", name))
	}
	n, err := t.CreateChecked(attrs, NewFragment(children...))
	if err != nil {
		panic(err)
	}
	return n
}

// T builds a text node.
func (s *Schema) T(text string, marks ...Mark) *Node {
	n, err := s.Text(text, marks...)
	if err != nil {
		panic(err)
	}
	return n
}

// M builds a mark of the named type.
func (s *Schema) M(name string, attrs map[string]any) Mark {
	mt := s.Marks[name]
	if mt == nil {
		panic(fmt.Sprintf("unknown mark type %q", name))
	}
	return mt.M(attrs)
}

// P builds a paragraph holding the given inline nodes.
func (s *Schema) P(children ...*Node) *Node {
	return s.N("paragraph", nil, children...)
}

// Doc builds a top node holding the given blocks.
func (s *Schema) Doc(children ...*Node) *Node {
	return s.N(s.Top.Name, nil, children...)
}
