// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"slices"
)

// Default names of the marks used to annotate diffs.
const (
	InsertionMark = "insertion"
	DeletionMark  = "deletion"
)

// AttrSpec describes a single node or mark attribute. Attributes without a
// default are required.
type AttrSpec struct {
	Default    any
	HasDefault bool
}

// Optional returns an AttrSpec with the given default value.
func Optional(def any) AttrSpec {
	return AttrSpec{Default: def, HasDefault: true}
}

// NodeSpec describes a node type.
//
// Fields:
//   - Content: node type names or group names allowed as children. An empty
//     Content on a non-text node makes it a leaf.
//   - MinContent: minimum number of children.
//   - Group: group name the type belongs to (e.g. "block", "inline").
//   - Inline: whether the node sits in inline content.
//   - NoMarks: children of this node may not carry marks.
type NodeSpec struct {
	Name       string
	Content    []string
	MinContent int
	Group      string
	Inline     bool
	NoMarks    bool
	Attrs      map[string]AttrSpec
}

// MarkSpec describes a mark type. NonInclusive marks are not inherited by
// content inserted at their edges.
type MarkSpec struct {
	Name         string
	Attrs        map[string]AttrSpec
	NonInclusive bool
}

// SchemaSpec is the input to NewSchema. The first node spec is the top node
// unless TopNode is set. Insertion and Deletion name the annotation marks and
// default to InsertionMark and DeletionMark.
type SchemaSpec struct {
	Nodes     []NodeSpec
	Marks     []MarkSpec
	TopNode   string
	Insertion string
	Deletion  string
}

// NodeType is a node type bound to its schema.
type NodeType struct {
	Name   string
	Spec   NodeSpec
	Schema *Schema
}

// MarkType is a mark type bound to its schema. Rank orders marks in a set.
type MarkType struct {
	Name   string
	Spec   MarkSpec
	Schema *Schema
	rank   int
}

// Schema holds the node and mark types of a document.
type Schema struct {
	Nodes     map[string]*NodeType
	Marks     map[string]*MarkType
	Top       *NodeType
	Insertion *MarkType
	Deletion  *MarkType
	text      *NodeType
}

// SchemaError reports a schema that cannot be used by the engine.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// NewSchema builds a Schema. It fails with a *SchemaError when the spec has no
// text type, references unknown types, or lacks the annotation marks.
func NewSchema(spec SchemaSpec) (*Schema, error) {
	if len(spec.Nodes) == 0 {
		return nil, &SchemaError{Reason: "no node types"}
	}

	s := &Schema{
		Nodes: make(map[string]*NodeType, len(spec.Nodes)),
		Marks: make(map[string]*MarkType, len(spec.Marks)),
	}

	for _, ns := range spec.Nodes {
		if _, dup := s.Nodes[ns.Name]; dup {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate node type %q", ns.Name)}
		}
		s.Nodes[ns.Name] = &NodeType{Name: ns.Name, Spec: ns, Schema: s}
	}
	for i, ms := range spec.Marks {
		if _, dup := s.Marks[ms.Name]; dup {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate mark type %q", ms.Name)}
		}
		s.Marks[ms.Name] = &MarkType{Name: ms.Name, Spec: ms, Schema: s, rank: i}
	}

	top := spec.TopNode
	if top == "" {
		top = spec.Nodes[0].Name
	}
	s.Top = s.Nodes[top]
	if s.Top == nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("top node type %q not defined", top)}
	}

	s.text = s.Nodes["text"]
	if s.text == nil {
		return nil, &SchemaError{Reason: "no text node type"}
	}
	s.text.Spec.Inline = true

	// Every content entry must name a type or a group.
	groups := map[string]bool{}
	for _, nt := range s.Nodes {
		if nt.Spec.Group != "" {
			groups[nt.Spec.Group] = true
		}
	}
	for _, nt := range s.Nodes {
		for _, c := range nt.Spec.Content {
			if s.Nodes[c] == nil && !groups[c] {
				return nil, &SchemaError{Reason: fmt.Sprintf("node type %q allows unknown content %q", nt.Name, c)}
			}
		}
	}

	ins, del := spec.Insertion, spec.Deletion
	if ins == "" {
		ins = InsertionMark
	}
	if del == "" {
		del = DeletionMark
	}
	s.Insertion = s.Marks[ins]
	s.Deletion = s.Marks[del]
	if s.Insertion == nil || s.Deletion == nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("annotation marks %q and %q are required", ins, del)}
	}

	return s, nil
}

// NodeType returns the named node type or nil.
func (s *Schema) NodeType(name string) *NodeType {
	return s.Nodes[name]
}

// MarkType returns the named mark type or nil.
func (s *Schema) MarkType(name string) *MarkType {
	return s.Marks[name]
}

// IsAnnotation reports whether mt is one of the diff annotation marks.
func (s *Schema) IsAnnotation(mt *MarkType) bool {
	return mt == s.Insertion || mt == s.Deletion
}

// IsText reports whether t is the text type.
func (t *NodeType) IsText() bool { return t.Name == "text" }

// IsInline reports whether nodes of t appear in inline content.
func (t *NodeType) IsInline() bool { return t.Spec.Inline }

// IsBlock reports whether nodes of t are block nodes.
func (t *NodeType) IsBlock() bool { return !t.Spec.Inline }

// IsLeaf reports whether nodes of t cannot have content.
func (t *NodeType) IsLeaf() bool { return !t.IsText() && len(t.Spec.Content) == 0 }

// IsTextblock reports whether t is a block whose content is inline.
func (t *NodeType) IsTextblock() bool {
	if !t.IsBlock() || t.IsLeaf() {
		return false
	}
	for _, c := range t.Spec.Content {
		if c == "inline" || c == "text" {
			return true
		}
		if nt := t.Schema.Nodes[c]; nt != nil && nt.IsInline() {
			return true
		}
	}
	return false
}

// Allows reports whether a child of type child may appear in t's content.
func (t *NodeType) Allows(child *NodeType) bool {
	for _, c := range t.Spec.Content {
		if c == child.Name || (child.Spec.Group != "" && c == child.Spec.Group) {
			return true
		}
	}
	return false
}

// AllowsMarks reports whether inline children of t may carry marks.
func (t *NodeType) AllowsMarks() bool {
	return !t.Spec.NoMarks
}

// CompatibleContent reports whether nodes of t and other can be joined.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	return t == other || slices.Equal(t.Spec.Content, other.Spec.Content)
}

// CheckContent validates a fragment as content for a node of type t.
func (t *NodeType) CheckContent(content Fragment) error {
	if t.IsLeaf() && content.ChildCount() > 0 {
		return &ValidationError{Type: t.Name, Reason: "leaf node cannot have content"}
	}
	if content.ChildCount() < t.Spec.MinContent {
		return &ValidationError{Type: t.Name, Reason: fmt.Sprintf("needs at least %d children, has %d", t.Spec.MinContent, content.ChildCount())}
	}
	for _, child := range content.nodes {
		if !t.Allows(child.Type) {
			return &ValidationError{Type: t.Name, Reason: fmt.Sprintf("child %q not allowed", child.Type.Name)}
		}
		if len(child.Marks) > 0 && !t.AllowsMarks() {
			return &ValidationError{Type: t.Name, Reason: "children cannot carry marks"}
		}
	}
	return nil
}

// ComputeAttrs fills defaults and drops attributes unknown to the spec.
func computeAttrs(specs map[string]AttrSpec, given map[string]any, owner string) (map[string]any, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(specs))
	for name, spec := range specs {
		v, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				return nil, &ValidationError{Type: owner, Reason: fmt.Sprintf("missing required attribute %q", name)}
			}
			v = spec.Default
		}
		out[name] = normalizeValue(v)
	}
	return out, nil
}

// normalizeValue folds Go numeric types into float64 so attributes compare
// equal to their JSON-decoded form.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// DefaultSchema returns a rich-text schema with the usual block and inline
// types plus the insertion and deletion annotation marks.
func DefaultSchema() *Schema {
	s, err := NewSchema(SchemaSpec{
		Nodes: []NodeSpec{
			{Name: "doc", Content: []string{"block"}, MinContent: 1},
			{Name: "paragraph", Content: []string{"inline"}, Group: "block"},
			{Name: "blockquote", Content: []string{"block"}, MinContent: 1, Group: "block"},
			{Name: "horizontal_rule", Group: "block"},
			{Name: "heading", Content: []string{"inline"}, Group: "block",
				Attrs: map[string]AttrSpec{"level": Optional(1)}},
			{Name: "code_block", Content: []string{"text"}, Group: "block", NoMarks: true,
				Attrs: map[string]AttrSpec{"language": Optional("")}},
			{Name: "bullet_list", Content: []string{"list_item"}, MinContent: 1, Group: "block"},
			{Name: "ordered_list", Content: []string{"list_item"}, MinContent: 1, Group: "block",
				Attrs: map[string]AttrSpec{"order": Optional(1)}},
			{Name: "list_item", Content: []string{"paragraph", "block"}, MinContent: 1},
			{Name: "text", Group: "inline", Inline: true},
			{Name: "image", Group: "inline", Inline: true,
				Attrs: map[string]AttrSpec{"src": {}, "alt": Optional("")}},
			{Name: "hard_break", Group: "inline", Inline: true},
		},
		Marks: []MarkSpec{
			{Name: "link", Attrs: map[string]AttrSpec{"href": {}}, NonInclusive: true},
			{Name: "em"},
			{Name: "strong"},
			{Name: "code"},
			{Name: InsertionMark, NonInclusive: true},
			{Name: DeletionMark, NonInclusive: true},
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}
