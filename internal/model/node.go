// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is a single element of a document tree. Text nodes carry Text and
// Marks; block nodes carry Attrs and Content. A Node is never modified after
// construction.
type Node struct {
	Type    *NodeType
	Attrs   map[string]any
	Content Fragment
	Marks   []Mark
	Text    string
}

// Create builds a node of type t. Attributes get their defaults and the mark
// set is normalized. Content is not validated; see CreateChecked.
func (t *NodeType) Create(attrs map[string]any, content Fragment, marks ...Mark) (*Node, error) {
	if t.IsText() {
		return nil, &ValidationError{Type: t.Name, Reason: "use Schema.Text to create text nodes"}
	}
	computed, err := computeAttrs(t.Spec.Attrs, attrs, t.Name)
	if err != nil {
		return nil, err
	}
	return &Node{Type: t, Attrs: computed, Content: content, Marks: NormalizeSet(marks)}, nil
}

// CreateChecked is Create followed by a content check.
func (t *NodeType) CreateChecked(attrs map[string]any, content Fragment, marks ...Mark) (*Node, error) {
	if err := t.CheckContent(content); err != nil {
		return nil, err
	}
	return t.Create(attrs, content, marks...)
}

// Text builds a text node.
func (s *Schema) Text(text string, marks ...Mark) (*Node, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	return &Node{Type: s.text, Text: text, Marks: NormalizeSet(marks)}, nil
}

// NodeSize is the number of positions the node occupies in its parent.
func (n *Node) NodeSize() int {
	switch {
	case n.Type.IsText():
		return utf8.RuneCountInString(n.Text)
	case n.Type.IsLeaf():
		return 1
	default:
		return n.Content.size + 2
	}
}

func (n *Node) IsText() bool      { return n.Type.IsText() }
func (n *Node) IsLeaf() bool      { return n.Type.IsLeaf() }
func (n *Node) IsInline() bool    { return n.Type.IsInline() }
func (n *Node) IsBlock() bool     { return n.Type.IsBlock() }
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// ChildCount is the number of direct children.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.Content.Child(i) }

// MaybeChild returns the child at index i or nil.
func (n *Node) MaybeChild(i int) *Node { return n.Content.MaybeChild(i) }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// Copy returns a node with the same markup and different content.
func (n *Node) Copy(content Fragment) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Marks: n.Marks}
}

// WithText returns a text node with the same marks and different text.
func (n *Node) WithText(text string) *Node {
	if text == n.Text {
		return n
	}
	return &Node{Type: n.Type, Text: text, Marks: n.Marks}
}

// Mark returns a copy of the node with the given mark set.
func (n *Node) Mark(marks []Mark) *Node {
	if SameSet(marks, n.Marks) {
		return n
	}
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: n.Content, Marks: marks, Text: n.Text}
}

// CutText returns the runes of a text node between from and to.
func (n *Node) CutText(from, to int) *Node {
	runes := []rune(n.Text)
	if from == 0 && to == len(runes) {
		return n
	}
	return n.WithText(string(runes[from:to]))
}

// Cut returns a node holding only the content between from and to.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		return n.CutText(from, to)
	}
	if from == 0 && to == n.Content.size {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// TextContent concatenates all text below the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	return n.Content.TextBetween(0, n.Content.size, "", "")
}

// TextBetween returns the text between two positions.
func (n *Node) TextBetween(from, to int, blockSep, leafText string) string {
	return n.Content.TextBetween(from, to, blockSep, leafText)
}

// NodesBetween calls fn for every descendant overlapping [from, to). pos is
// the absolute start of each node.
func (n *Node) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.Content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.Content.size, fn)
}

// NodeAt returns the node starting directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos)
		if err != nil {
			return nil
		}
		node = node.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// RangeHasMark reports whether any inline node in [from, to) carries a mark
// of type mt.
func (n *Node) RangeHasMark(from, to int, mt *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, _ int, _ *Node, _ int) bool {
			if _, ok := mt.IsInSet(node.Marks); ok {
				found = true
			}
			return !found
		})
	}
	return found
}

// SameMarkup reports whether two nodes share type, attributes and marks.
func (n *Node) SameMarkup(other *Node) bool {
	return n.Type == other.Type && attrsEqual(n.Attrs, other.Attrs) && SameSet(n.Marks, other.Marks)
}

// Eq reports structural equality.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil || !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return n.Text == other.Text
	}
	return n.Content.Eq(other.Content)
}

// Check validates the node and its descendants against the schema.
func (n *Node) Check() error {
	if n.IsText() {
		if n.Text == "" {
			return ErrEmptyText
		}
	} else if err := n.Type.CheckContent(n.Content); err != nil {
		return err
	}
	for name := range n.Attrs {
		if _, ok := n.Type.Spec.Attrs[name]; !ok {
			return &ValidationError{Type: n.Type.Name, Reason: fmt.Sprintf("unsupported attribute %q", name)}
		}
	}
	for name, spec := range n.Type.Spec.Attrs {
		if _, ok := n.Attrs[name]; !ok && !spec.HasDefault {
			return &ValidationError{Type: n.Type.Name, Reason: fmt.Sprintf("missing required attribute %q", name)}
		}
	}
	if !SameSet(n.Marks, NormalizeSet(n.Marks)) {
		return &ValidationError{Type: n.Type.Name, Reason: "invalid mark set"}
	}
	for _, child := range n.Content.nodes {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// StripMarks returns a copy of the tree without any marks.
func (n *Node) StripMarks() *Node {
	return n.MapMarks(func([]Mark) []Mark { return nil })
}

// MapMarks returns a copy of the tree with fn applied to every mark set.
// Empty results are stored as nil.
func (n *Node) MapMarks(fn func([]Mark) []Mark) *Node {
	if n.IsText() || n.IsLeaf() {
		marks := fn(n.Marks)
		if len(marks) == 0 {
			marks = nil
		}
		return n.Mark(marks)
	}
	children := make([]*Node, len(n.Content.nodes))
	for i, c := range n.Content.nodes {
		children[i] = c.MapMarks(fn)
	}
	return n.Copy(NewFragment(children...))
}

func (n *Node) String() string {
	var s string
	switch {
	case n.IsText():
		s = strconv.Quote(n.Text)
	case n.Content.size > 0:
		inner := n.Content.String()
		s = n.Type.Name + "(" + inner[1:len(inner)-1] + ")"
	default:
		s = n.Type.Name
	}
	for i := len(n.Marks) - 1; i >= 0; i-- {
		s = n.Marks[i].Type.Name + "(" + s + ")"
	}
	return s
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case map[string]any:
		keys := slices.Sorted(maps.Keys(x))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + formatValue(x[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprint(v)
	}
}
