// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"reflect"
	"slices"
	"strings"
)

// Mark is an inline formatting annotation carried by text and inline leaves.
type Mark struct {
	Type  *MarkType
	Attrs map[string]any
}

// Create builds a mark of type mt, filling attribute defaults.
func (mt *MarkType) Create(attrs map[string]any) (Mark, error) {
	computed, err := computeAttrs(mt.Spec.Attrs, attrs, mt.Name)
	if err != nil {
		return Mark{}, err
	}
	return Mark{Type: mt, Attrs: computed}, nil
}

// M builds a mark and panics on invalid attributes. Intended for fixtures.
func (mt *MarkType) M(attrs map[string]any) Mark {
	m, err := mt.Create(attrs)
	if err != nil {
		panic(err)
	}
	return m
}

// Eq reports whether two marks have the same type and attributes.
func (m Mark) Eq(other Mark) bool {
	return m.Type == other.Type && attrsEqual(m.Attrs, other.Attrs)
}

// IsInSet reports whether m is in set.
func (m Mark) IsInSet(set []Mark) bool {
	return slices.ContainsFunc(set, m.Eq)
}

// AddToSet returns a copy of set with m added in rank order. A mark of the
// same type is replaced.
func (m Mark) AddToSet(set []Mark) []Mark {
	out := make([]Mark, 0, len(set)+1)
	placed := false
	for _, o := range set {
		if o.Eq(m) {
			return set
		}
		if o.Type == m.Type {
			continue
		}
		if !placed && o.Type.rank > m.Type.rank {
			out = append(out, m)
			placed = true
		}
		out = append(out, o)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns set without m. The input is returned unchanged when m
// is absent.
func (m Mark) RemoveFromSet(set []Mark) []Mark {
	for i, o := range set {
		if o.Eq(m) {
			out := make([]Mark, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

// IsInSet reports whether a mark of type mt is in set.
func (mt *MarkType) IsInSet(set []Mark) (Mark, bool) {
	for _, m := range set {
		if m.Type == mt {
			return m, true
		}
	}
	return Mark{}, false
}

// RemoveFromSet drops every mark of type mt from set.
func (mt *MarkType) RemoveFromSet(set []Mark) []Mark {
	var out []Mark
	for _, m := range set {
		if m.Type != mt {
			out = append(out, m)
		}
	}
	return out
}

// SameSet reports whether two mark sets hold the same marks in the same order.
func SameSet(a, b []Mark) bool {
	return slices.EqualFunc(a, b, Mark.Eq)
}

// NormalizeSet sorts marks by rank and drops duplicate types, keeping the
// last occurrence.
func NormalizeSet(marks []Mark) []Mark {
	var out []Mark
	for _, m := range marks {
		out = m.AddToSet(out)
	}
	return out
}

func (m Mark) String() string {
	if len(m.Attrs) == 0 {
		return m.Type.Name
	}
	keys := make([]string, 0, len(m.Attrs))
	for k := range m.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	b.WriteString(m.Type.Name)
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(m.Attrs[k]))
	}
	b.WriteByte(')')
	return b.String()
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
