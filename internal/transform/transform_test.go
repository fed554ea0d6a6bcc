// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package transform

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/redline/internal/model"
)

var schema = model.DefaultSchema()

func doc(blocks ...*model.Node) *model.Node { return schema.Doc(blocks...) }
func p(text string) *model.Node {
	if text == "" {
		return schema.P()
	}
	return schema.P(schema.T(text))
}
func text(s string) model.Slice {
	return model.NewSlice(model.NewFragment(schema.T(s)), 0, 0)
}

func TestStepMap_Map(t *testing.T) {
	m := NewStepMap(2, 3, 1)

	tests := []struct {
		name  string
		pos   int
		assoc int
		want  int
	}{
		{name: "before range", pos: 1, assoc: 1, want: 1},
		{name: "after range", pos: 6, assoc: 1, want: 4},
		{name: "inside range", pos: 3, assoc: 1, want: 3},
		{name: "inside range left", pos: 3, assoc: -1, want: 2},
		{name: "range start", pos: 2, assoc: 1, want: 2},
		{name: "range end", pos: 5, assoc: -1, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.pos, tt.assoc))
		})
	}
}

func TestStepMap_MapResult(t *testing.T) {
	m := NewStepMap(2, 3, 0)

	inside := m.MapResult(3, 1)
	assert.True(t, inside.DeletedAcross())
	assert.True(t, inside.Deleted())
	assert.NotEqual(t, NoRecover, inside.Recover)

	start := m.MapResult(2, -1)
	assert.False(t, start.Deleted())
	assert.True(t, start.DeletedAfter())
	assert.False(t, start.DeletedBefore())

	outside := m.MapResult(7, 1)
	assert.Equal(t, 4, outside.Pos)
	assert.False(t, outside.DeletedBefore())
}

func TestStepMap_InsertAssoc(t *testing.T) {
	m := NewStepMap(2, 0, 3)

	assert.Equal(t, 2, m.Map(2, -1))
	assert.Equal(t, 5, m.Map(2, 1))
	assert.Equal(t, 2, m.Invert().Map(4, 1))
}

func TestMapping_Mirror(t *testing.T) {
	del := NewStepMap(2, 3, 0)

	plain := NewMapping(del, del.Invert())
	assert.Equal(t, 5, plain.Map(3, 1))

	mirrored := NewMapping(del, del.Invert())
	mirrored.SetMirror(0, 1)
	assert.Equal(t, 3, mirrored.Map(3, 1))
}

func TestMapping_Slice(t *testing.T) {
	m := NewMapping(NewStepMap(0, 0, 2), NewStepMap(0, 0, 3))

	assert.Equal(t, 6, m.Map(1, 1))
	assert.Equal(t, 4, m.Slice(1, -1).Map(1, 1))
	assert.Equal(t, 1, m.Len()-m.Slice(1, -1).Len())
}

func TestReplaceStep_ApplyInvert(t *testing.T) {
	base := doc(p("hello"), p("world"))

	tests := []struct {
		name string
		step *ReplaceStep
		want *model.Node
	}{
		{name: "insert", step: NewReplaceStep(3, 3, text("XY")), want: doc(p("heXYllo"), p("world"))},
		{name: "delete", step: NewReplaceStep(2, 4, model.EmptySlice), want: doc(p("hlo"), p("world"))},
		{name: "join", step: NewReplaceStep(6, 8, model.EmptySlice), want: doc(p("helloworld"))},
		{name: "replace text", step: NewReplaceStep(1, 6, text("bye")), want: doc(p("bye"), p("world"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.step.Apply(base)
			require.NoError(t, err)
			assert.True(t, tt.want.Eq(got), "got %s", got)

			back, err := tt.step.Invert(base).Apply(got)
			require.NoError(t, err)
			assert.True(t, base.Eq(back), "got %s", back)
		})
	}
}

func TestReplaceStep_Map(t *testing.T) {
	step := NewReplaceStep(3, 4, text("x"))

	assert.Nil(t, step.Map(NewStepMap(2, 3, 0)))

	shifted := step.Map(NewStepMap(0, 0, 2))
	require.NotNil(t, shifted)
	from, to := shifted.Range()
	assert.Equal(t, 5, from)
	assert.Equal(t, 6, to)
}

func TestReplaceStep_Merge(t *testing.T) {
	a := NewReplaceStep(1, 1, text("a"))
	b := NewReplaceStep(2, 2, text("b"))

	merged, ok := a.Merge(b)
	require.True(t, ok)
	rs := merged.(*ReplaceStep)
	assert.Equal(t, 1, rs.From)
	assert.Equal(t, 1, rs.To)
	assert.Equal(t, "ab", rs.Slice.Content.Child(0).Text)

	_, ok = a.Merge(NewReplaceStep(5, 5, text("c")))
	assert.False(t, ok)

	_, ok = a.Merge(AddMarkStep(1, 2, schema.M("em", nil)))
	assert.False(t, ok)
}

func TestMarkStep(t *testing.T) {
	em := schema.M("em", nil)
	base := doc(p("hello"))

	add := AddMarkStep(2, 4, em)
	got, err := add.Apply(base)
	require.NoError(t, err)
	want := doc(schema.P(schema.T("h"), schema.T("el", em), schema.T("lo")))
	assert.True(t, want.Eq(got), "got %s", got)

	back, err := add.Invert(base).Apply(got)
	require.NoError(t, err)
	assert.True(t, base.Eq(back))

	assert.True(t, add.GetMap().Empty())
}

func TestMarkStep_AcrossBlocks(t *testing.T) {
	strong := schema.M("strong", nil)
	base := doc(p("ab"), p("cd"))

	got, err := AddMarkStep(2, 6, strong).Apply(base)
	require.NoError(t, err)

	want := doc(
		schema.P(schema.T("a"), schema.T("b", strong)),
		schema.P(schema.T("c", strong), schema.T("d")),
	)
	assert.True(t, want.Eq(got), "got %s", got)
}

func TestMarkStep_Merge(t *testing.T) {
	em := schema.M("em", nil)
	strong := schema.M("strong", nil)

	tests := []struct {
		name   string
		a, b   *MarkStep
		ok     bool
		wantTo int
	}{
		{name: "adjacent", a: AddMarkStep(1, 3, em), b: AddMarkStep(3, 5, em), ok: true, wantTo: 5},
		{name: "overlapping", a: AddMarkStep(1, 4, em), b: AddMarkStep(2, 6, em), ok: true, wantTo: 6},
		{name: "gap", a: AddMarkStep(1, 2, em), b: AddMarkStep(3, 5, em), ok: false},
		{name: "different mark", a: AddMarkStep(1, 3, em), b: AddMarkStep(3, 5, strong), ok: false},
		{name: "different kind", a: AddMarkStep(1, 3, em), b: RemoveMarkStep(3, 5, em), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, ok := tt.a.Merge(tt.b)
			assert.Equal(t, tt.ok, ok)
			if ok {
				_, to := merged.Range()
				assert.Equal(t, tt.wantTo, to)
			}
		})
	}
}

func TestMinimalReplace(t *testing.T) {
	tests := []struct {
		name     string
		from, to *model.Node
		wantFrom int
		wantTo   int
	}{
		{name: "single char", from: doc(p("abc")), to: doc(p("axc")), wantFrom: 2, wantTo: 3},
		{name: "repeated content", from: doc(p("aa")), to: doc(p("aaa")), wantFrom: 3, wantTo: 3},
		{name: "new paragraph", from: doc(p("a")), to: doc(p("a"), p("b")), wantFrom: 3, wantTo: 3},
		{name: "remove paragraph", from: doc(p("a"), p("b")), to: doc(p("a")), wantFrom: 3, wantTo: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := MinimalReplace(tt.from, tt.to)
			require.NoError(t, err)
			require.NotNil(t, step)
			assert.Equal(t, tt.wantFrom, step.From)
			assert.Equal(t, tt.wantTo, step.To)

			got, err := step.Apply(tt.from)
			require.NoError(t, err)
			assert.True(t, tt.to.Eq(got), "got %s", got)
		})
	}

	step, err := MinimalReplace(doc(p("a")), doc(p("a")))
	require.NoError(t, err)
	assert.Nil(t, step)
}

func TestTransform_Builders(t *testing.T) {
	tr := New(doc(p("hello")))

	require.NoError(t, tr.Insert(6, schema.T("!")))
	require.NoError(t, tr.Delete(1, 2))
	require.NoError(t, tr.AddMark(1, 3, schema.M("strong", nil)))
	require.NoError(t, tr.Delete(3, 3))

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, "ello!", tr.Doc.TextContent())
	assert.Len(t, tr.Docs, 3)
	assert.Equal(t, 1, tr.Mapping().Map(1, 1))
	assert.Equal(t, 7, tr.Mapping().Map(7, 1))

	inv, err := tr.Invert()
	require.NoError(t, err)
	assert.True(t, tr.Base.Eq(inv.Doc))
}

func TestTransform_StepFailure(t *testing.T) {
	tr := New(doc(p("hi")))

	err := tr.Step(NewReplaceStep(0, 4, model.EmptySlice))
	var re *model.ReplaceError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.MaybeStep(NewReplaceStep(0, 4, model.EmptySlice)))
}

func TestTransform_JSON(t *testing.T) {
	tr := New(doc(p("hello"), p("world")))
	require.NoError(t, tr.Replace(2, 4, text("EE")))
	require.NoError(t, tr.AddMark(7, 12, schema.M("link", map[string]any{"href": "https://example.com"})))
	require.NoError(t, tr.Delete(6, 8))

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	back, err := UnmarshalJSON(schema, data)
	require.NoError(t, err)
	assert.Equal(t, tr.Len(), back.Len())
	assert.True(t, tr.Doc.Eq(back.Doc))
	for i := range tr.Steps {
		assert.Equal(t, Kind(tr.Steps[i]), Kind(back.Steps[i]))
	}
}

func TestStepFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "unknown type", json: `{"stepType":"wrap","from":0,"to":1}`},
		{name: "bad range", json: `{"stepType":"replace","from":3,"to":1}`},
		{name: "bad mark", json: `{"stepType":"addMark","from":1,"to":2,"mark":{"type":"nope"}}`},
		{name: "malformed", json: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StepFromJSON(schema, []byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestSimplify(t *testing.T) {
	em := schema.M("em", nil)

	tests := []struct {
		name      string
		build     func(tr *Transform)
		wantSteps int
	}{
		{
			name: "typing run",
			build: func(tr *Transform) {
				_ = tr.Insert(6, schema.T("a"))
				_ = tr.Insert(7, schema.T("b"))
				_ = tr.Insert(8, schema.T("c"))
			},
			wantSteps: 1,
		},
		{
			name: "insert then delete cancels",
			build: func(tr *Transform) {
				_ = tr.Insert(3, schema.T("xyz"))
				_ = tr.Delete(3, 6)
			},
			wantSteps: 0,
		},
		{
			name: "distant edits stay apart",
			build: func(tr *Transform) {
				_ = tr.Insert(1, schema.T("a"))
				_ = tr.Insert(6, schema.T("b"))
			},
			wantSteps: 2,
		},
		{
			name: "adjacent marks",
			build: func(tr *Transform) {
				_ = tr.AddMark(1, 3, em)
				_ = tr.AddMark(3, 5, em)
			},
			wantSteps: 1,
		},
		{
			name: "mixed kinds",
			build: func(tr *Transform) {
				_ = tr.AddMark(1, 3, em)
				_ = tr.Insert(3, schema.T("z"))
			},
			wantSteps: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(doc(p("hello")))
			tt.build(tr)

			got, err := Simplify(tr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSteps, got.Len())
			assert.LessOrEqual(t, got.Len(), tr.Len())
			assert.True(t, tr.Doc.Eq(got.Doc), "got %s", got.Doc)
		})
	}
}

func TestSession_Capture(t *testing.T) {
	s := NewSession(doc(p("hi")))

	require.NoError(t, s.Capture(Event{}))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Capture(Event{Steps: []Step{NewReplaceStep(3, 3, text("a"))}}))
	require.NoError(t, s.Capture(Event{Steps: []Step{NewReplaceStep(4, 4, text("b"))}}))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "hiab", s.Doc().TextContent())
	rs := s.Steps()[0].(*ReplaceStep)
	assert.Equal(t, 3, rs.From)
	assert.Equal(t, "ab", rs.Slice.Content.Child(0).Text)
}

func TestSession_CaptureErrors(t *testing.T) {
	s := NewSession(doc(p("hi")))

	err := s.Capture(Event{Steps: []Step{
		NewReplaceStep(1, 1, text("a")),
		NewReplaceStep(2, 2, text("b")),
	}})
	var mse *MultiStepError
	require.True(t, errors.As(err, &mse))
	assert.Equal(t, 2, mse.Count)

	err = s.Capture(Event{Steps: []Step{NewReplaceStep(0, 9, model.EmptySlice)}})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Base().Eq(s.Doc()))
}

func TestSession_DeletedStepsDrop(t *testing.T) {
	s := NewSession(doc(p("hello")))

	require.NoError(t, s.Capture(Event{Steps: []Step{AddMarkStep(2, 4, schema.M("em", nil))}}))
	require.NoError(t, s.Capture(Event{Steps: []Step{NewReplaceStep(1, 6, model.EmptySlice)}}))

	require.Equal(t, 1, s.Len())
	assert.Equal(t, "replace", Kind(s.Steps()[0]))
}
