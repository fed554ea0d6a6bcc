// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
diff:
  granularity: char
  annotate: true
  separate_marks: "false"
  max_size: 5000
  skip: [attrs, marks]
merge:
  stop_on_conflict: true
store:
  kind: s3
  s3:
    bucket: revisions
    prefix: team/
  local:
    dir: /tmp/redline
output:
  color: 3
`

// withConfig writes content to a temp file, points REDLINE_CFG_FILE at it
// and resets the global Config.
func withConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvFile, path)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
	return path
}

func TestLoad(t *testing.T) {
	path := withConfig(t, sample)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Contains(t, cfg.Data, "diff")
	assert.Equal(t, Config.Source, cfg.Source)
}

func TestLoad_ExplicitPath(t *testing.T) {
	withConfig(t, "a: 1\n")
	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("b: 2\n"), 0o600))

	cfg, err := Load(other)
	require.NoError(t, err)
	assert.Equal(t, other, cfg.Source)
	assert.Contains(t, cfg.Data, "b")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing file",
			setup: func(t *testing.T) {
				t.Setenv(EnvFile, filepath.Join(t.TempDir(), "nope.yaml"))
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T) {
				t.Setenv(EnvFile, t.TempDir())
			},
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T) {
				withConfig(t, "diff: [unterminated\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Config = Type{}
			tt.setup(t)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetters(t *testing.T) {
	withConfig(t, sample)

	s, err := GetString("diff.granularity")
	require.NoError(t, err)
	assert.Equal(t, "char", s)

	n, err := GetInt("diff.max_size")
	require.NoError(t, err)
	assert.Equal(t, 5000, n)

	b, err := GetBool("diff.annotate")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = GetBool("diff.separate_marks")
	require.NoError(t, err)
	assert.False(t, b)

	b, err = GetBool("merge.stop_on_conflict")
	require.NoError(t, err)
	assert.True(t, b)

	ss, err := GetStringSlice("diff.skip")
	require.NoError(t, err)
	assert.Equal(t, []string{"attrs", "marks"}, ss)
}

func TestGetters_Defaults(t *testing.T) {
	withConfig(t, sample)

	tests := []struct {
		name string
		get  func() (any, error)
		want any
	}{
		{"string", func() (any, error) { return GetString("nope", "word") }, "word"},
		{"int", func() (any, error) { return GetInt("diff.nope", 7) }, 7},
		{"bool", func() (any, error) { return GetBool("merge.nope", true) }, true},
		{"slice", func() (any, error) { return GetStringSlice("nope", []string{"x"}) }, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetters_Errors(t *testing.T) {
	withConfig(t, sample)

	tests := []struct {
		name string
		get  func() error
	}{
		{"missing without default", func() error { _, err := GetString("nope"); return err }},
		{"string not string", func() error { _, err := GetString("diff.max_size"); return err }},
		{"int not int", func() error { _, err := GetInt("diff.granularity"); return err }},
		{"bool not bool", func() error { _, err := GetBool("diff.granularity"); return err }},
		{"bool wrong type", func() error { _, err := GetBool("output.color"); return err }},
		{"slice not slice", func() error { _, err := GetStringSlice("diff.granularity"); return err }},
		{"through scalar", func() error { _, err := GetString("diff.granularity.x"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.get())
		})
	}
}

func TestGet_Namespace(t *testing.T) {
	withConfig(t, sample)
	_, err := Load()
	require.NoError(t, err)

	Config.Namespace = "store.s3"
	bucket, err := GetString("bucket")
	require.NoError(t, err)
	assert.Equal(t, "revisions", bucket)

	kind, err := GetString("store.kind")
	require.NoError(t, err)
	assert.Equal(t, "s3", kind, "bare key used when the namespaced one is missing")

	Config.Namespace = "store.local"
	dir, err := GetString("dir")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/redline", dir)
}

func TestGet_LazyLoad(t *testing.T) {
	withConfig(t, sample)
	assert.Empty(t, Config.Data)

	s, err := GetString("store.kind")
	require.NoError(t, err)
	assert.Equal(t, "s3", s)
	assert.NotEmpty(t, Config.Data)
}

func TestGet_NotFound(t *testing.T) {
	withConfig(t, sample)
	_, err := GetString("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDuration(t *testing.T) {
	withConfig(t, "cache:\n  hours: 48\n  half: 0.5\n  text: 90m\n  bad: soon\n  flag: true\n")

	tests := []struct {
		key     string
		want    time.Duration
		wantErr bool
	}{
		{"cache.hours", 48 * time.Hour, false},
		{"cache.half", 30 * time.Minute, false},
		{"cache.text", 90 * time.Minute, false},
		{"cache.bad", 0, true},
		{"cache.flag", 0, true},
		{"cache.missing", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := GetDuration(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	d, err := GetDuration("cache.missing", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)
}
