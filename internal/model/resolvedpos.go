// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position with the context of the nodes around it. Depth 0
// is the document itself.
type ResolvedPos struct {
	Pos          int
	Depth        int
	ParentOffset int
	path         []pathEntry
}

// Resolve resolves pos against the node.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.Content.size {
		return nil, &RangeError{Pos: pos, Size: n.Content.size}
	}
	var path []pathEntry
	start, parentOffset := 0, pos
	for node := n; ; {
		index, offset, err := node.Content.FindIndex(parentOffset)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}, nil
}

// MustResolve is Resolve for positions known to be valid.
func (n *Node) MustResolve(pos int) *ResolvedPos {
	rp, err := n.Resolve(pos)
	if err != nil {
		panic(err)
	}
	return rp
}

// Node returns the ancestor at depth.
func (r *ResolvedPos) Node(depth int) *Node { return r.path[depth].node }

// Parent is the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node { return r.Node(r.Depth) }

// Doc is the root node the position was resolved in.
func (r *ResolvedPos) Doc() *Node { return r.Node(0) }

// Index returns the index into the ancestor at depth.
func (r *ResolvedPos) Index(depth int) int { return r.path[depth].index }

// IndexAfter returns the index pointing after the position in the ancestor at
// depth.
func (r *ResolvedPos) IndexAfter(depth int) int {
	if depth == r.Depth && r.TextOffset() == 0 {
		return r.Index(depth)
	}
	return r.Index(depth) + 1
}

// Start is the position at the start of the ancestor at depth.
func (r *ResolvedPos) Start(depth int) int {
	if depth == 0 {
		return 0
	}
	return r.path[depth-1].offset + 1
}

// End is the position at the end of the ancestor at depth.
func (r *ResolvedPos) End(depth int) int {
	return r.Start(depth) + r.Node(depth).Content.size
}

// Before is the position directly before the ancestor at depth (> 0).
func (r *ResolvedPos) Before(depth int) int {
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset
}

// After is the position directly after the ancestor at depth (> 0).
func (r *ResolvedPos) After(depth int) int {
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset + r.Node(depth).NodeSize()
}

// TextOffset is the offset into a text node when the position points inside
// one, zero otherwise.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node directly after the position, cut when the
// position is inside a text node.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.Cut(off, child.NodeSize())
	}
	return child
}

// NodeBefore returns the node directly before the position.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().Child(index).Cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// Marks returns the marks that content inserted at the position inherits.
// Non-inclusive marks only apply when present on both sides.
func (r *ResolvedPos) Marks() []Mark {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.Content.size == 0 {
		return nil
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).Marks
	}
	main, other := parent.MaybeChild(index-1), parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	if main == nil {
		return nil
	}
	marks := main.Marks
	for _, m := range main.Marks {
		if m.Type.Spec.NonInclusive && (other == nil || !m.IsInSet(other.Marks)) {
			marks = m.RemoveFromSet(marks)
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor containing both this
// position and pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for depth := r.Depth; depth > 0; depth-- {
		if r.Start(depth) <= pos && r.End(depth) >= pos {
			return depth
		}
	}
	return 0
}

// SameParent reports whether two positions share a parent node.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.Pos-r.ParentOffset == other.Pos-other.ParentOffset
}
