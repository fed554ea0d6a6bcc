// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

// Slice is a piece of a document. OpenStart and OpenEnd give the depth of
// the nodes cut open at each side.
type Slice struct {
	Content   Fragment
	OpenStart int
	OpenEnd   int
}

// EmptySlice has no content.
var EmptySlice = Slice{}

// NewSlice builds a slice.
func NewSlice(content Fragment, openStart, openEnd int) Slice {
	return Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// Size is the number of positions the slice adds when inserted.
func (s Slice) Size() int {
	return s.Content.size - s.OpenStart - s.OpenEnd
}

// Eq reports structural equality.
func (s Slice) Eq(other Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

func (s Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content, s.OpenStart, s.OpenEnd)
}

// Slice cuts the document between from and to.
func (n *Node) Slice(from, to int) (Slice, error) {
	if from == to {
		return EmptySlice, nil
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return EmptySlice, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return EmptySlice, err
	}
	depth := rFrom.SharedDepth(to)
	start := rFrom.Start(depth)
	content := rFrom.Node(depth).Content.Cut(rFrom.Pos-start, rTo.Pos-start)
	return NewSlice(content, rFrom.Depth-depth, rTo.Depth-depth), nil
}

// Replace returns a document with [from, to) replaced by slice. The slice's
// open sides are joined onto the surrounding nodes.
func (n *Node) Replace(from, to int, slice Slice) (out *Node, err error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	if slice.OpenStart > rFrom.Depth {
		return nil, &ReplaceError{Reason: "inserted content deeper than insertion position"}
	}
	if rFrom.Depth-slice.OpenStart != rTo.Depth-slice.OpenEnd {
		return nil, &ReplaceError{Reason: "inconsistent open depths"}
	}

	// The helpers below panic with *ReplaceError to unwind the recursion.
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *ReplaceError:
				out, err = nil, e
			case *RangeError:
				out, err = nil, &ReplaceError{Reason: "slice does not fit", Err: e}
			default:
				panic(r)
			}
		}
	}()
	return replaceOuter(rFrom, rTo, slice, 0), nil
}

func replaceOuter(rFrom, rTo *ResolvedPos, slice Slice, depth int) *Node {
	index := rFrom.Index(depth)
	node := rFrom.Node(depth)
	switch {
	case index == rTo.Index(depth) && depth < rFrom.Depth-slice.OpenStart:
		inner := replaceOuter(rFrom, rTo, slice, depth+1)
		return node.Copy(node.Content.ReplaceChild(index, inner))
	case slice.Content.size == 0:
		return closeNode(node, replaceTwoWay(rFrom, rTo, depth))
	case slice.OpenStart == 0 && slice.OpenEnd == 0 && rFrom.Depth == depth && rTo.Depth == depth:
		parent := rFrom.Parent()
		content := parent.Content
		return closeNode(parent, content.Cut(0, rFrom.ParentOffset).Append(slice.Content).Append(content.Cut(rTo.ParentOffset, content.size)))
	default:
		start, end := prepareSliceForReplace(slice, rFrom)
		return closeNode(node, replaceThreeWay(rFrom, start, end, rTo, depth))
	}
}

func checkJoin(main, sub *Node) {
	if !sub.Type.CompatibleContent(main.Type) {
		panic(&ReplaceError{Reason: fmt.Sprintf("cannot join %s onto %s", sub.Type.Name, main.Type.Name)})
	}
}

func joinable(before, after *ResolvedPos, depth int) *Node {
	node := before.Node(depth)
	checkJoin(node, after.Node(depth))
	return node
}

func addNode(child *Node, target *[]*Node) {
	last := len(*target) - 1
	if last >= 0 && child.IsText() && child.SameMarkup((*target)[last]) {
		(*target)[last] = child.WithText((*target)[last].Text + child.Text)
		return
	}
	*target = append(*target, child)
}

func addRange(start, end *ResolvedPos, depth int, target *[]*Node) {
	ref := end
	if ref == nil {
		ref = start
	}
	node := ref.Node(depth)
	startIndex, endIndex := 0, node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			addNode(start.NodeAfter(), target)
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		addNode(node.Child(i), target)
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		addNode(end.NodeBefore(), target)
	}
}

func closeNode(node *Node, content Fragment) *Node {
	if err := node.Type.CheckContent(content); err != nil {
		panic(&ReplaceError{Reason: "invalid content", Err: err})
	}
	return node.Copy(content)
}

func replaceThreeWay(rFrom, start, end, rTo *ResolvedPos, depth int) Fragment {
	var openStart, openEnd *Node
	if rFrom.Depth > depth {
		openStart = joinable(rFrom, start, depth+1)
	}
	if rTo.Depth > depth {
		openEnd = joinable(end, rTo, depth+1)
	}

	var content []*Node
	addRange(nil, rFrom, depth, &content)
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		checkJoin(openStart, openEnd)
		addNode(closeNode(openStart, replaceThreeWay(rFrom, start, end, rTo, depth+1)), &content)
	} else {
		if openStart != nil {
			addNode(closeNode(openStart, replaceTwoWay(rFrom, start, depth+1)), &content)
		}
		addRange(start, end, depth, &content)
		if openEnd != nil {
			addNode(closeNode(openEnd, replaceTwoWay(end, rTo, depth+1)), &content)
		}
	}
	addRange(rTo, nil, depth, &content)
	return NewFragment(content...)
}

func replaceTwoWay(rFrom, rTo *ResolvedPos, depth int) Fragment {
	var content []*Node
	addRange(nil, rFrom, depth, &content)
	if rFrom.Depth > depth {
		typ := joinable(rFrom, rTo, depth+1)
		addNode(closeNode(typ, replaceTwoWay(rFrom, rTo, depth+1)), &content)
	}
	addRange(rTo, nil, depth, &content)
	return NewFragment(content...)
}

// prepareSliceForReplace wraps the slice in copies of the ancestors of along
// so it can be resolved at the same depths as the replaced range.
func prepareSliceForReplace(slice Slice, along *ResolvedPos) (*ResolvedPos, *ResolvedPos) {
	extra := along.Depth - slice.OpenStart
	node := along.Node(extra).Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(NewFragment(node))
	}
	start := node.MustResolve(slice.OpenStart + extra)
	end := node.MustResolve(node.Content.size - slice.OpenEnd - extra)
	return start, end
}
