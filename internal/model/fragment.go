// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strings"
	"unicode/utf8"
)

// Fragment is an immutable ordered sequence of sibling nodes.
type Fragment struct {
	nodes []*Node
	size  int
}

// EmptyFragment has no children.
var EmptyFragment = Fragment{}

// NewFragment builds a fragment from nodes, joining adjacent text nodes that
// carry the same marks.
func NewFragment(nodes ...*Node) Fragment {
	if len(nodes) == 0 {
		return EmptyFragment
	}
	out := make([]*Node, 0, len(nodes))
	size := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		size += n.NodeSize()
		if last := len(out) - 1; last >= 0 && n.IsText() && out[last].IsText() && SameSet(n.Marks, out[last].Marks) {
			out[last] = out[last].WithText(out[last].Text + n.Text)
			continue
		}
		out = append(out, n)
	}
	return Fragment{nodes: out, size: size}
}

// Size is the positional size of the fragment's content.
func (f Fragment) Size() int { return f.size }

// ChildCount is the number of direct children.
func (f Fragment) ChildCount() int { return len(f.nodes) }

// Child returns the child at index i.
func (f Fragment) Child(i int) *Node { return f.nodes[i] }

// MaybeChild returns the child at index i or nil.
func (f Fragment) MaybeChild(i int) *Node {
	if i < 0 || i >= len(f.nodes) {
		return nil
	}
	return f.nodes[i]
}

// FirstChild returns the first child or nil.
func (f Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child or nil.
func (f Fragment) LastChild() *Node { return f.MaybeChild(len(f.nodes) - 1) }

// Children returns a copy of the child slice.
func (f Fragment) Children() []*Node {
	return append([]*Node(nil), f.nodes...)
}

// Eq reports structural equality.
func (f Fragment) Eq(other Fragment) bool {
	if len(f.nodes) != len(other.nodes) {
		return false
	}
	for i, n := range f.nodes {
		if !n.Eq(other.nodes[i]) {
			return false
		}
	}
	return true
}

// Append concatenates two fragments, joining text at the seam.
func (f Fragment) Append(other Fragment) Fragment {
	if other.size == 0 && len(other.nodes) == 0 {
		return f
	}
	if f.size == 0 && len(f.nodes) == 0 {
		return other
	}
	nodes := make([]*Node, 0, len(f.nodes)+len(other.nodes))
	nodes = append(nodes, f.nodes...)
	nodes = append(nodes, other.nodes...)
	return NewFragment(nodes...)
}

// AddToStart prepends a node.
func (f Fragment) AddToStart(n *Node) Fragment {
	return NewFragment(append([]*Node{n}, f.nodes...)...)
}

// AddToEnd appends a node.
func (f Fragment) AddToEnd(n *Node) Fragment {
	nodes := append(append([]*Node(nil), f.nodes...), n)
	return NewFragment(nodes...)
}

// ReplaceChild returns a fragment with the child at index i replaced.
func (f Fragment) ReplaceChild(i int, n *Node) Fragment {
	nodes := append([]*Node(nil), f.nodes...)
	nodes[i] = n
	return NewFragment(nodes...)
}

// Cut returns the part of the fragment between from and to.
func (f Fragment) Cut(from, to int) Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var out []*Node
	if to > from {
		pos := 0
		for _, child := range f.nodes {
			if pos >= to {
				break
			}
			end := pos + child.NodeSize()
			if end > from {
				if child.IsText() {
					child = child.CutText(max(0, from-pos), min(utf8.RuneCountInString(child.Text), to-pos))
				} else if pos < from || end > to {
					child = child.Cut(max(0, from-pos-1), min(child.Content.size, to-pos-1))
				}
				out = append(out, child)
			}
			pos = end
		}
	}
	return NewFragment(out...)
}

// FindIndex returns the index of the child at or containing pos and the
// offset at which that child starts. A pos at the end yields ChildCount.
func (f Fragment) FindIndex(pos int) (index, offset int, err error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.size {
		return len(f.nodes), pos, nil
	}
	if pos > f.size || pos < 0 {
		return 0, 0, &RangeError{Pos: pos, Size: f.size}
	}
	cur := 0
	for i, child := range f.nodes {
		end := cur + child.NodeSize()
		if end >= pos {
			if end == pos {
				return i + 1, end, nil
			}
			return i, cur, nil
		}
		cur = end
	}
	return len(f.nodes), f.size, nil
}

// NodesBetween calls fn for every node overlapping [from, to). Returning
// false from fn skips the node's children.
func (f Fragment) NodesBetween(from, to int, fn func(n *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i, child := range f.nodes {
		if pos >= to {
			break
		}
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.size > 0 {
			start := pos + 1
			child.Content.NodesBetween(max(0, from-start), min(child.Content.size, to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// TextBetween concatenates text in [from, to), inserting blockSep between
// textblocks and leafText for leaf nodes.
func (f Fragment) TextBetween(from, to int, blockSep, leafText string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(n *Node, pos int, _ *Node, _ int) bool {
		switch {
		case n.IsText():
			runes := []rune(n.Text)
			b.WriteString(string(runes[max(from, pos)-pos : min(len(runes), to-pos)]))
			first = blockSep == ""
		case n.IsLeaf():
			b.WriteString(leafText)
			first = blockSep == ""
		case !first && n.Type.IsBlock():
			b.WriteString(blockSep)
			first = true
		}
		return true
	}, 0, nil)
	return b.String()
}

// FindDiffStart returns the first position at which f and other differ, or
// -1 when they are equal.
func (f Fragment) FindDiffStart(other Fragment) int {
	return findDiffStart(f, other, 0)
}

// FindDiffEnd returns the positions, counted from the end of each fragment,
// at which f and other last differ. ok is false when they are equal.
func (f Fragment) FindDiffEnd(other Fragment) (a, b int, ok bool) {
	return findDiffEnd(f, other, f.size, other.size)
}

func findDiffStart(a, b Fragment, pos int) int {
	for i := 0; ; i++ {
		if i == a.ChildCount() || i == b.ChildCount() {
			if a.ChildCount() == b.ChildCount() {
				return -1
			}
			return pos
		}
		childA, childB := a.Child(i), b.Child(i)
		if childA == childB {
			pos += childA.NodeSize()
			continue
		}
		if !childA.SameMarkup(childB) {
			return pos
		}
		if childA.IsText() && childA.Text != childB.Text {
			ra, rb := []rune(childA.Text), []rune(childB.Text)
			j := 0
			for j < len(ra) && j < len(rb) && ra[j] == rb[j] {
				j++
				pos++
			}
			return pos
		}
		if childA.Content.size > 0 || childB.Content.size > 0 {
			if inner := findDiffStart(childA.Content, childB.Content, pos+1); inner >= 0 {
				return inner
			}
		}
		pos += childA.NodeSize()
	}
}

func findDiffEnd(a, b Fragment, posA, posB int) (int, int, bool) {
	iA, iB := a.ChildCount(), b.ChildCount()
	for {
		if iA == 0 || iB == 0 {
			if iA == iB {
				return 0, 0, false
			}
			return posA, posB, true
		}
		iA--
		iB--
		childA, childB := a.Child(iA), b.Child(iB)
		size := childA.NodeSize()
		if childA == childB {
			posA -= size
			posB -= size
			continue
		}
		if !childA.SameMarkup(childB) {
			return posA, posB, true
		}
		if childA.IsText() && childA.Text != childB.Text {
			ra, rb := []rune(childA.Text), []rune(childB.Text)
			same := 0
			minSize := min(len(ra), len(rb))
			for same < minSize && ra[len(ra)-same-1] == rb[len(rb)-same-1] {
				same++
				posA--
				posB--
			}
			return posA, posB, true
		}
		if childA.Content.size > 0 || childB.Content.size > 0 {
			if ia, ib, ok := findDiffEnd(childA.Content, childB.Content, posA-1, posB-1); ok {
				return ia, ib, true
			}
		}
		posA -= size
		posB -= size
	}
}

func (f Fragment) String() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
