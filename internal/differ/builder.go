// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/transform"
)

// Passes of structural diffing before the builder falls back to a single
// replace of what is left.
const maxRounds = 4

type builder struct {
	schema *model.Schema
	opts   Options
	tr     *transform.Transform
	to     *model.Node
	target *model.Node
}

func newBuilder(from, to *model.Node, opts Options) *builder {
	b := &builder{
		schema: from.Type.Schema,
		opts:   opts,
		tr:     transform.New(from),
		to:     to,
	}
	b.target = b.view(to)
	return b
}

func (b *builder) step(s transform.Step) error {
	if err := b.tr.Step(s); err != nil {
		return &DiffError{Reason: "no valid step found", Err: err}
	}
	log.Tracef("differ: %s", transform.Describe(s))
	return nil
}

// content brings the content of the transform's document to the target.
func (b *builder) content() error {
	for round := 0; round < maxRounds; round++ {
		cur := b.view(b.tr.Doc)
		if cur.Eq(b.target) {
			return nil
		}
		ops, err := Structural(cur, b.target)
		if err != nil {
			return &DiffError{Reason: "structural diff", Err: err}
		}
		if len(ops) == 0 {
			break
		}
		if err := b.groups(cur, ops); err != nil {
			return err
		}
	}

	cur := b.view(b.tr.Doc)
	if cur.Eq(b.target) {
		return nil
	}
	log.Debugf("differ: content did not converge, replacing remaining region")
	return b.replace(cur, b.target)
}

// groups consumes ops in order, growing a group until applying it to the
// JSON snapshot yields a valid document, then emits the group's steps. It
// returns early when the emitted steps leave the transform out of step with
// the snapshot, so the caller can diff again.
func (b *builder) groups(cur *model.Node, ops []PatchOp) error {
	snapshot, err := cur.MarshalJSON()
	if err != nil {
		return &DiffError{Reason: "encoding document", Err: err}
	}

	var group []PatchOp
	after := snapshot
	for i, op := range ops {
		group = append(group, op)
		after, err = applyOp(after, op)
		if err != nil {
			return &DiffError{Reason: "applying " + op.String(), Err: err}
		}
		next, err := b.schema.NodeFromJSON(after)
		if err != nil {
			if i == len(ops)-1 {
				return &DiffError{Reason: "no valid document after all operations", Err: err}
			}
			continue
		}

		log.Tracef("differ: group of %d ending with %s", len(group), op)
		if err := b.group(cur, snapshot, next, group); err != nil {
			return err
		}

		group = nil
		cur, snapshot = next, after
		if !b.view(b.tr.Doc).Eq(cur) {
			log.Debugf("differ: resyncing after %s", op)
			return nil
		}
	}
	return nil
}

func (b *builder) group(cur *model.Node, snapshot []byte, next *model.Node, group []PatchOp) error {
	if cur.Eq(next) {
		return nil
	}
	if len(group) == 1 {
		op := group[0]
		switch tail := pointerTail(op.Path); {
		case len(tail) > 0 && (tail[0] == "type" || tail[0] == "attrs"):
			return &UnsupportedChangeError{Op: op.Op, Path: op.Path}
		case op.Op == "replace" && len(tail) == 1 && tail[0] == "text":
			if newText, ok := op.Value.(string); ok {
				start, oldText, err := b.locateText(snapshot, op.Path)
				if err == nil {
					var marks []model.Mark
					if n := cur.NodeAt(start); n != nil {
						marks = n.Marks
					}
					return b.textEdits(start, oldText, newText, marks)
				}
				log.Debugf("differ: %v, falling back to replace", err)
			}
		}
	}
	return b.replace(cur, next)
}

// replace emits the minimal replace between two views of the document.
func (b *builder) replace(cur, next *model.Node) error {
	step, err := transform.MinimalReplace(cur, next)
	if err != nil {
		return &DiffError{Reason: "no valid step found", Err: err}
	}
	if step == nil {
		return nil
	}
	if !b.opts.Annotate {
		return b.step(step)
	}

	ranges := deletedRanges(b.schema, b.tr.Doc)
	from := toActual(ranges, step.From, true)
	to := max(from, toActual(ranges, step.To, false))
	rFrom, err := b.tr.Doc.Resolve(from)
	if err != nil {
		return &DiffError{Reason: "no valid step found", Err: err}
	}
	content := markInserted(b.schema, step.Slice.Content, rFrom.Parent().Type.AllowsMarks())
	slice := model.NewSlice(content, step.Slice.OpenStart, step.Slice.OpenEnd)
	return b.step(transform.NewReplaceStep(from, to, slice))
}

// pointerTail returns the segments of a pointer after its last run of
// content/index pairs: the part addressing a field of the node itself.
func pointerTail(p string) []string {
	segs := splitPointer(p)
	i := 0
	for i+1 < len(segs) && segs[i] == "content" && isIndex(segs[i+1]) {
		i += 2
	}
	return segs[i:]
}

func isIndex(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

type textLookupError struct{ path string }

func (e *textLookupError) Error() string { return "no text node at " + e.path }

// locateText walks a JSON snapshot along a pointer ending in /text and
// returns the position of that text node and its current text.
func (b *builder) locateText(snapshot []byte, path string) (int, string, error) {
	var node map[string]any
	if err := json.Unmarshal(snapshot, &node); err != nil {
		return 0, "", err
	}

	segs := splitPointer(path)
	pos := 0
	for i := 0; i+1 < len(segs) && segs[i] == "content"; i += 2 {
		idx, err := strconv.Atoi(segs[i+1])
		if err != nil {
			return 0, "", &textLookupError{path}
		}
		if i > 0 {
			pos++
		}
		children, _ := node["content"].([]any)
		if idx >= len(children) {
			return 0, "", &textLookupError{path}
		}
		for _, c := range children[:idx] {
			pos += b.jsonSize(c)
		}
		node, _ = children[idx].(map[string]any)
		if node == nil {
			return 0, "", &textLookupError{path}
		}
	}

	text, ok := node["text"].(string)
	if !ok {
		return 0, "", &textLookupError{path}
	}
	return pos, text, nil
}

// jsonSize is the node size of a JSON encoded node.
func (b *builder) jsonSize(v any) int {
	n, _ := v.(map[string]any)
	name, _ := n["type"].(string)
	if text, ok := n["text"].(string); ok {
		return utf8.RuneCountInString(text)
	}
	if t := b.schema.NodeType(name); t != nil && t.IsLeaf() {
		return 1
	}
	size := 2
	children, _ := n["content"].([]any)
	for _, c := range children {
		size += b.jsonSize(c)
	}
	return size
}
