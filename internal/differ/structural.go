// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/yudai/gojsondiff"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
)

// PatchOp is one JSON patch operation against a document's JSON encoding.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// MarshalJSON writes value for every operation but remove, even when it is
// a zero value.
func (o PatchOp) MarshalJSON() ([]byte, error) {
	if o.Op == "remove" {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{o.Op, o.Path})
	}
	type plain PatchOp
	return json.Marshal(plain(o))
}

func (o PatchOp) String() string {
	if o.Op == "remove" {
		return o.Op + " " + o.Path
	}
	v, _ := json.Marshal(o.Value)
	return fmt.Sprintf("%s %s %s", o.Op, o.Path, v)
}

// Structural returns the patch operations that turn the JSON encoding of
// from into that of to. The operations apply in order, each one against the
// result of those before it.
func Structural(from, to *model.Node) ([]PatchOp, error) {
	left, err := decode(from)
	if err != nil {
		return nil, err
	}
	right, err := decode(to)
	if err != nil {
		return nil, err
	}

	r := &renderer{}
	r.value("", left, right)
	log.Tracef("structural: %d ops", len(r.ops))
	return r.ops, nil
}

func decode(n *model.Node) (any, error) {
	data, err := n.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return v, nil
}

type renderer struct {
	ops []PatchOp
}

func (r *renderer) emit(op, path string, value any) {
	r.ops = append(r.ops, PatchOp{Op: op, Path: path, Value: value})
}

func (r *renderer) value(path string, from, to any) {
	switch f := from.(type) {
	case map[string]any:
		if t, ok := to.(map[string]any); ok {
			r.object(path, f, t)
			return
		}
	case []any:
		if t, ok := to.([]any); ok {
			r.array(path, f, t)
			return
		}
	}
	if !reflect.DeepEqual(from, to) {
		r.emit("replace", path, to)
	}
}

// object renders the key level delta of two objects, recursing into keys
// present on both sides. Keys are visited in sorted order.
func (r *renderer) object(path string, from, to map[string]any) {
	d := gojsondiff.New().CompareObjects(from, to)
	if !d.Modified() {
		return
	}

	deltas := d.Deltas()
	sort.SliceStable(deltas, func(i, j int) bool {
		return deltaKey(deltas[i]) < deltaKey(deltas[j])
	})

	for _, delta := range deltas {
		key := deltaKey(delta)
		p := path + "/" + escapePointer(key)
		switch delta.(type) {
		case *gojsondiff.Added:
			r.emit("add", p, to[key])
		case *gojsondiff.Deleted:
			r.emit("remove", p, nil)
		default:
			r.value(p, from[key], to[key])
		}
	}
}

func deltaKey(d gojsondiff.Delta) string {
	switch d := d.(type) {
	case *gojsondiff.Deleted:
		return d.PrePosition().String()
	case gojsondiff.PostDelta:
		return d.PostPosition().String()
	default:
		return ""
	}
}

// array renders an element level LCS of two arrays. Runs of removed and
// added elements are paired up: paired nodes of the same type are diffed
// recursively, the rest are removed or added. If the rendered operations do
// not reproduce the target the whole array is replaced.
func (r *renderer) array(path string, from, to []any) {
	mark := len(r.ops)
	r.arrayOps(path, from, to)
	if !verifyArray(path, from, to, r.ops[mark:]) {
		log.Debugf("structural: array ops for %q did not verify, replacing", path)
		r.ops = append(r.ops[:mark], PatchOp{Op: "replace", Path: path, Value: to})
	}
}

func (r *renderer) arrayOps(path string, from, to []any) {
	keys := map[string]rune{}
	diffs := diffmatchpatch.New().DiffMainRunes(elementRunes(keys, from), elementRunes(keys, to), false)

	fi, ti, at := 0, 0, 0
	for k := 0; k < len(diffs); k++ {
		d := diffs[k]
		n := utf8.RuneCountInString(d.Text)
		if d.Type == diffmatchpatch.DiffEqual {
			fi += n
			ti += n
			at += n
			continue
		}

		removed, added := 0, 0
		if d.Type == diffmatchpatch.DiffDelete {
			removed = n
		} else {
			added = n
		}
		if k+1 < len(diffs) && diffs[k+1].Type != diffmatchpatch.DiffEqual && diffs[k+1].Type != d.Type {
			k++
			if removed == 0 {
				removed = utf8.RuneCountInString(diffs[k].Text)
			} else {
				added = utf8.RuneCountInString(diffs[k].Text)
			}
		}

		at = r.pairRun(path, from[fi:fi+removed], to[ti:ti+added], at)
		fi += removed
		ti += added
	}
}

// pairRun replaces olds with news starting at index at of the evolving
// array and returns the index after the run.
func (r *renderer) pairRun(path string, olds, news []any, at int) int {
	paired := min(len(olds), len(news))
	for i := 0; i < paired; i++ {
		p := fmt.Sprintf("%s/%d", path, at)
		if sameNodeType(olds[i], news[i]) {
			r.value(p, olds[i], news[i])
		} else {
			r.emit("replace", p, news[i])
		}
		at++
	}
	for range olds[paired:] {
		r.emit("remove", fmt.Sprintf("%s/%d", path, at), nil)
	}
	for _, v := range news[paired:] {
		r.emit("add", fmt.Sprintf("%s/%d", path, at), v)
		at++
	}
	return at
}

func sameNodeType(a, b any) bool {
	ma, ok := a.(map[string]any)
	if !ok {
		return false
	}
	mb, ok := b.(map[string]any)
	if !ok {
		return false
	}
	return ma["type"] != nil && ma["type"] == mb["type"]
}

// elementRunes maps each distinct element, by canonical JSON, to a rune.
func elementRunes(keys map[string]rune, elems []any) []rune {
	out := make([]rune, len(elems))
	for i, e := range elems {
		data, _ := json.Marshal(e)
		k := string(data)
		r, ok := keys[k]
		if !ok {
			r = elementRune(len(keys))
			keys[k] = r
		}
		out[i] = r
	}
	return out
}

// Element runes start in the private use area and skip the surrogates.
func elementRune(i int) rune {
	r := rune(0xE000 + i)
	if r >= 0xF900 {
		r += 0x10000 - 0xF900
	}
	return r
}

// verifyArray applies ops, rebased onto a wrapper document, and reports
// whether they turn from into to.
func verifyArray(path string, from, to []any, ops []PatchOp) (ok bool) {
	if len(ops) == 0 {
		return reflect.DeepEqual(from, to)
	}
	defer recoverPatch(path, &ok)

	local := make([]PatchOp, len(ops))
	for i, op := range ops {
		op.Path = "/v" + strings.TrimPrefix(op.Path, path)
		local[i] = op
	}
	raw, err := json.Marshal(local)
	if err != nil {
		return false
	}
	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return false
	}
	doc, err := json.Marshal(map[string]any{"v": from})
	if err != nil {
		return false
	}
	out, err := patch.Apply(doc)
	if err != nil {
		return false
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		return false
	}
	return reflect.DeepEqual(got["v"], to)
}

// recoverPatch turns a panic inside json-patch into a failed check.
func recoverPatch(path string, ok *bool) {
	if r := recover(); r != nil {
		log.Debugf("structural: patch check at %s panicked: %v", path, r)
		*ok = false
	}
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string { return pointerEscaper.Replace(s) }

// splitPointer splits a JSON pointer into unescaped segments.
func splitPointer(p string) []string {
	if p == "" {
		return nil
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segs {
		segs[i] = pointerUnescaper.Replace(s)
	}
	return segs
}

// applyOp applies one op to a JSON document.
func applyOp(doc []byte, op PatchOp) ([]byte, error) {
	raw, err := json.Marshal([]PatchOp{op})
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, err
	}
	return patch.Apply(doc)
}
