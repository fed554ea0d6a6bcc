// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/redline/internal/cacheutil"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/differ"
	"github.com/staranto/redline/internal/merge"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/transform"
)

var s = model.DefaultSchema()

func doc(texts ...string) *model.Node {
	var blocks []*model.Node
	for _, t := range texts {
		blocks = append(blocks, s.P(s.T(t)))
	}
	return s.Doc(blocks...)
}

// sandbox isolates config and the record store in a temp directory. A
// non-empty cfg is written as the config file.
func sandbox(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if cfg != "" {
		require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	}
	t.Setenv(config.EnvFile, path)
	t.Setenv(cacheutil.EnvDir, filepath.Join(dir, "cache"))
	t.Setenv(cacheutil.EnvEnabled, "1")
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
	return dir
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	argv := append([]string{"redline"}, args...)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(context.Background(), argv)
	return out.String(), err
}

func TestDiff(t *testing.T) {
	dir := sandbox(t, "")
	from := writeJSON(t, dir, "from.json", doc("hello"))
	to := writeJSON(t, dir, "to.json", doc("hello world"))

	t.Run("raw", func(t *testing.T) {
		out, err := run(t, "diff", "-o", "raw", from, to)
		require.NoError(t, err)
		tr, err := transform.UnmarshalJSON(s, []byte(out))
		require.NoError(t, err)
		assert.True(t, tr.Base.Eq(doc("hello")))
		assert.True(t, tr.Doc.Eq(doc("hello world")))
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "diff", "-o", "json", from, to)
		require.NoError(t, err)
		rows := gjson.Parse(out).Array()
		require.NotEmpty(t, rows)
		assert.Equal(t, "replace", rows[0].Get("type").String())
		assert.True(t, rows[0].Get("summary").Exists())
	})

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "diff", from, to)
		require.NoError(t, err)
		assert.Contains(t, out, "replace")
		assert.Contains(t, out, "steps")
	})

	t.Run("keys", func(t *testing.T) {
		out, err := run(t, "diff", "--keys", from, to)
		require.NoError(t, err)
		assert.Contains(t, out, "summary\n")
		assert.Contains(t, out, "type\n")
	})

	t.Run("structural", func(t *testing.T) {
		out, err := run(t, "diff", "--structural", from, to)
		require.NoError(t, err)
		assert.Contains(t, out, "hello world")
	})

	t.Run("stdin", func(t *testing.T) {
		tests := []struct {
			name  string
			args  []string
			input *model.Node
		}{
			{"from", []string{"-", to}, doc("hello")},
			{"to", []string{from, "-"}, doc("hello world")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				argv := StdinArgs(append([]string{"redline", "diff", "-o", "raw"}, tt.args...))
				app, err := InitApp(context.Background(), argv)
				require.NoError(t, err)
				data, err := json.Marshal(tt.input)
				require.NoError(t, err)
				var out bytes.Buffer
				app.Reader = bytes.NewReader(data)
				app.Writer = &out
				require.NoError(t, app.Run(context.Background(), argv))
				tr, err := transform.UnmarshalJSON(s, out.Bytes())
				require.NoError(t, err)
				assert.True(t, tr.Doc.Eq(doc("hello world")))
				assert.NotEmpty(t, tr.Steps)
			})
		}
	})
}

func TestStdinArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", []string{"redline", "diff", "a.json", "b.json"}, []string{"redline", "diff", "a.json", "b.json"}},
		{"first", []string{"redline", "diff", "-", "b.json"}, []string{"redline", "diff", StdinArg, "b.json"}},
		{"after flags", []string{"redline", "merge", "-o", "raw", "base.json", "-"}, []string{"redline", "merge", "-o", "raw", "base.json", StdinArg}},
		{"command name kept", []string{"-", "-"}, []string{"-", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.args...)
			assert.Equal(t, tt.want, StdinArgs(tt.args))
			assert.Equal(t, in, tt.args)
		})
	}
}

func TestDiff_Select(t *testing.T) {
	dir := sandbox(t, "")
	from := writeJSON(t, dir, "from.json", map[string]any{"page": map[string]any{"body": doc("one")}})
	to := writeJSON(t, dir, "to.json", map[string]any{"page": map[string]any{"body": doc("one two")}})

	out, err := run(t, "diff", "--select", "page.body", "-o", "raw", from, to)
	require.NoError(t, err)
	tr, err := transform.UnmarshalJSON(s, []byte(out))
	require.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc("one two")))

	_, err = run(t, "diff", "--select", "page.nope", from, to)
	assert.ErrorContains(t, err, "nothing at")

	hist := writeJSON(t, dir, "hist.json", map[string]any{"revisions": []any{doc("one"), doc("one two")}})
	_, err = run(t, "diff", "--select", "revisions[1]", "-o", "raw", from, hist)
	assert.ErrorContains(t, err, "from.json")

	out, err = run(t, "diff", "--select", "revisions[1]", "-o", "raw", hist, hist)
	require.NoError(t, err)
	tr, err = transform.UnmarshalJSON(s, []byte(out))
	require.NoError(t, err)
	assert.Empty(t, tr.Steps)
	assert.True(t, tr.Doc.Eq(doc("one two")))
}

func TestDiff_Granularity(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		args []string
		from int64
	}{
		{"default word", "", nil, 1},
		{"flag", "", []string{"-g", "char"}, 2},
		{"config", "diff:\n  granularity: char\n", nil, 2},
		{"flag beats config", "diff:\n  granularity: char\n", []string{"-g", "word"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := sandbox(t, tt.cfg)
			from := writeJSON(t, dir, "from.json", doc("cat"))
			to := writeJSON(t, dir, "to.json", doc("cut"))

			args := append([]string{"diff", "-o", "json"}, tt.args...)
			out, err := run(t, append(args, from, to)...)
			require.NoError(t, err)
			rows := gjson.Parse(out).Array()
			require.Len(t, rows, 1)
			assert.Equal(t, tt.from, rows[0].Get("from").Int())
		})
	}
}

func TestDiff_Errors(t *testing.T) {
	dir := sandbox(t, "")
	from := writeJSON(t, dir, "from.json", doc("a"))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":"nope"}`), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"one document", []string{"diff", from}},
		{"too many", []string{"diff", from, from, from}},
		{"missing file", []string{"diff", from, filepath.Join(dir, "nope.json")}},
		{"invalid document", []string{"diff", from, bad}},
		{"bad granularity", []string{"diff", "-g", "line", from, from}},
		{"bad output", []string{"diff", "-o", "xml", from, from}},
		{"bad color", []string{"diff", "-c", "sometimes", from, from}},
		{"bad store", []string{"list", "--store", "ftp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSimplify(t *testing.T) {
	dir := sandbox(t, "")
	tr := transform.New(doc("hello"))
	require.NoError(t, tr.Insert(6, s.T(" a")))
	require.NoError(t, tr.Insert(8, s.T("b")))
	path := writeJSON(t, dir, "tr.json", tr)

	out, err := run(t, "simplify", "-o", "raw", path)
	require.NoError(t, err)
	got, err := transform.UnmarshalJSON(s, []byte(out))
	require.NoError(t, err)
	assert.Len(t, got.Steps, 1)
	assert.True(t, got.Doc.Eq(tr.Doc))

	out, err = run(t, "simplify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 steps, was 2")
}

func revision(t *testing.T, author string, base, to *model.Node) *merge.Revision {
	t.Helper()
	tr, err := differ.Diff(base, to, differ.Options{})
	require.NoError(t, err)
	return merge.NewRevision(author, tr)
}

func TestMerge(t *testing.T) {
	dir := sandbox(t, "")
	base := doc("alpha beta", "gamma delta")
	basePath := writeJSON(t, dir, "base.json", base)
	alice := writeJSON(t, dir, "a.json", revision(t, "alice", base, doc("alpha BETA", "gamma delta")))
	// A bare transform takes its author from the file name.
	bob := writeJSON(t, dir, "bob.json", revision(t, "", base, doc("alpha beta", "gamma delta epsilon")).Transform)

	out, err := run(t, "merge", "-o", "raw", basePath, alice, bob)
	require.NoError(t, err)
	got, err := s.NodeFromJSON([]byte(out))
	require.NoError(t, err)
	assert.True(t, got.Eq(doc("alpha BETA", "gamma delta epsilon")), "got %s", got)

	out, err = run(t, "merge", "-o", "json", basePath, alice, bob)
	require.NoError(t, err)
	rows := gjson.Parse(out).Array()
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Get("author").String())
	assert.Equal(t, "bob", rows[1].Get("author").String())
	for _, r := range rows {
		assert.Equal(t, "clean", r.Get("outcome").String())
	}

	out, err = run(t, "merge", basePath, alice, bob)
	require.NoError(t, err)
	assert.Contains(t, out, "2 clean, 0 conflicted")
}

func TestMerge_Conflict(t *testing.T) {
	dir := sandbox(t, "")
	base := doc("alpha beta")
	basePath := writeJSON(t, dir, "base.json", base)
	alice := writeJSON(t, dir, "a.json", revision(t, "alice", base, doc("alpha BETA")))
	bob := writeJSON(t, dir, "b.json", revision(t, "bob", base, doc("alpha Beta")))

	t.Run("unresolved", func(t *testing.T) {
		out, err := run(t, "merge", "-o", "json", basePath, alice, bob)
		var ce *merge.ConflictError
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, []string{"bob"}, ce.Authors)

		rows := gjson.Parse(out).Array()
		require.Len(t, rows, 2)
		assert.Equal(t, "conflict", rows[1].Get("outcome").String())
	})

	t.Run("conflicts listing", func(t *testing.T) {
		out, err := run(t, "merge", "--conflicts", "-o", "json", basePath, alice, bob)
		assert.Error(t, err)
		rows := gjson.Parse(out).Array()
		require.NotEmpty(t, rows)
		assert.Equal(t, "bob", rows[0].Get("author").String())
		assert.NotEmpty(t, rows[0].Get("reason").String())
	})

	t.Run("resolved", func(t *testing.T) {
		res := writeJSON(t, dir, "res.json", doc("alpha BEta"))
		out, err := run(t, "merge", "--resolve", "1="+res, "-o", "raw", basePath, alice, bob)
		require.NoError(t, err)
		got, err := s.NodeFromJSON([]byte(out))
		require.NoError(t, err)
		assert.True(t, got.Eq(doc("alpha BEta")), "got %s", got)
	})

	t.Run("bad resolve", func(t *testing.T) {
		for _, spec := range []string{"1", "x=" + alice, "1="} {
			_, err := run(t, "merge", "--resolve", spec, basePath, alice, bob)
			assert.ErrorContains(t, err, "--resolve", spec)
		}
	})

	t.Run("base mismatch", func(t *testing.T) {
		other := writeJSON(t, dir, "other.json", doc("something else"))
		_, err := run(t, "merge", other, alice)
		assert.ErrorIs(t, err, merge.ErrBaseMismatch)
	})
}

func TestRecordListShow(t *testing.T) {
	dir := sandbox(t, "")
	base := doc("alpha beta", "gamma delta")
	basePath := writeJSON(t, dir, "base.json", base)
	a := writeJSON(t, dir, "a.json", doc("alpha BETA", "gamma delta"))
	b := writeJSON(t, dir, "b.json", doc("alpha beta", "gamma delta epsilon"))

	out, err := run(t, "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = run(t, "record", "-o", "raw", "alice", basePath, a)
	require.NoError(t, err)
	idA := gjson.Get(out, "id").String()
	require.Len(t, idA, 64)
	assert.Equal(t, "revision", gjson.Get(out, "kind").String())
	assert.Equal(t, base.Hash(), gjson.Get(out, "base").String())

	out, err = run(t, "record", "-o", "json", "bob", basePath, b)
	require.NoError(t, err)
	rows := gjson.Parse(out).Array()
	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0].Get("author").String())
	idB := rows[0].Get("id").String()
	require.Len(t, idB, 12)

	out, err = run(t, "list", "-o", "json")
	require.NoError(t, err)
	assert.Len(t, gjson.Parse(out).Array(), 2)

	out, err = run(t, "show", "-o", "raw", idA[:10])
	require.NoError(t, err)
	got, err := s.NodeFromJSON([]byte(out))
	require.NoError(t, err)
	assert.True(t, got.Eq(doc("alpha BETA", "gamma delta")))

	out, err = run(t, "show", idA)
	require.NoError(t, err)
	assert.Contains(t, out, "revision by alice")

	out, err = run(t, "merge", "--records", "--save", "--author", "carol", "-o", "raw", basePath, idA, idB)
	require.NoError(t, err)
	got, err = s.NodeFromJSON([]byte(out))
	require.NoError(t, err)
	assert.True(t, got.Eq(doc("alpha BETA", "gamma delta epsilon")))

	out, err = run(t, "list", "-o", "json", "-f", "kind=merge")
	require.NoError(t, err)
	merged := gjson.Parse(out).Array()
	require.Len(t, merged, 1)
	assert.Equal(t, "carol", merged[0].Get("author").String())

	out, err = run(t, "show", "-o", "raw", merged[0].Get("id").String())
	require.NoError(t, err)
	got, err = s.NodeFromJSON([]byte(out))
	require.NoError(t, err)
	assert.True(t, got.Eq(doc("alpha BETA", "gamma delta epsilon")))

	_, err = run(t, "merge", "--records", basePath, merged[0].Get("id").String())
	assert.ErrorContains(t, err, "not a revision")

	_, err = run(t, "show", "ffffffffffff")
	assert.Error(t, err)
}

func TestCapture(t *testing.T) {
	dir := sandbox(t, "")
	base := writeJSON(t, dir, "base.json", doc("hi"))
	insert := func(pos int, text string) string {
		return `{"stepType":"replace","from":` + string(rune('0'+pos)) +
			`,"to":` + string(rune('0'+pos)) +
			`,"slice":{"content":[{"type":"text","text":"` + text + `"}]}}`
	}
	events := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(events, []byte(`[
		{"steps":[`+insert(3, "a")+`]},
		{"steps":[`+insert(4, "b")+`]},
		{"steps":[]}
	]`), 0o600))

	out, err := run(t, "capture", "-o", "raw", base, events)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "steps.#").Int())
	got, err := s.NodeFromJSON([]byte(gjson.Get(out, "doc").Raw))
	require.NoError(t, err)
	assert.Equal(t, "hiab", got.TextContent())

	out, err = run(t, "capture", base, events)
	require.NoError(t, err)
	assert.Contains(t, out, "3 events, 1 steps")

	multi := filepath.Join(dir, "multi.json")
	require.NoError(t, os.WriteFile(multi, []byte(`[{"steps":[`+insert(1, "x")+`,`+insert(2, "y")+`]}]`), 0o600))
	_, err = run(t, "capture", base, multi)
	var mse *transform.MultiStepError
	assert.True(t, errors.As(err, &mse), "got %v", err)

	notArray := filepath.Join(dir, "obj.json")
	require.NoError(t, os.WriteFile(notArray, []byte(`{"steps":[]}`), 0o600))
	_, err = run(t, "capture", base, notArray)
	assert.ErrorContains(t, err, "JSON array")
}

func TestCompletion(t *testing.T) {
	sandbox(t, "")
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "complete -F _redline redline"},
		{"zsh", "#compdef redline"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := run(t, "completion", tt.shell)
			require.NoError(t, err)
			assert.True(t, strings.Contains(out, tt.want))
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("SHELL", "/bin/fish")
		out, err := run(t, "completion")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		ok        bool
	}{
		{"output text", OutputValidator, "text", true},
		{"output raw", OutputValidator, "raw", true},
		{"output xml", OutputValidator, "xml", false},
		{"color never", ColorValidator, "never", true},
		{"color blue", ColorValidator, "blue", false},
		{"store empty", StoreValidator, "", true},
		{"store s3", StoreValidator, "s3", true},
		{"store gcs", StoreValidator, "gcs", false},
		{"granularity char", GranularityValidator, "char", true},
		{"granularity line", GranularityValidator, "line", false},
		{"not a string", OutputValidator, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInitApp(t *testing.T) {
	sandbox(t, "diff:\n  annotate: true\n")
	app, err := InitApp(context.Background(), []string{"redline", "diff"})
	require.NoError(t, err)
	assert.Equal(t, "diff", config.Config.Namespace)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"capture", "diff", "list", "merge", "record", "show", "simplify", "completion"}, names)

	for _, c := range app.Commands {
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], c.Name)
		}
		assert.Equal(t, []string{"redline", "diff"}, GetMeta(c).Args, c.Name)
	}
}
