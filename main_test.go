// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/redline/internal/cacheutil"
	"github.com/staranto/redline/internal/command"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/version"
)

const sets = `
diff:
  defaults:
    - --granularity char
    - --titles
  json:
    - -o json
`

func withConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(config.EnvFile, path)
	t.Setenv(cacheutil.EnvDir, t.TempDir())
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"long", []string{"redline", "--version"}, true},
		{"short", []string{"redline", "diff", "-v"}, true},
		{"absent", []string{"redline", "diff", "a.json", "b.json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.want, handleVersion(tt.args, &buf))
			if tt.want {
				assert.Equal(t, version.Version+"\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"redline", "--help"}, handleNakedCommand([]string{"redline"}))
	assert.Equal(t, []string{"redline", "list"}, handleNakedCommand([]string{"redline", "list"}))
}

func TestProcessSetOnly(t *testing.T) {
	withConfig(t, sets)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no set",
			args: []string{"redline", "diff", "a.json", "b.json"},
			want: []string{"redline", "diff", "a.json", "b.json"},
		},
		{
			name: "short args",
			args: []string{"redline", "diff"},
			want: []string{"redline", "diff"},
		},
		{
			name: "expanded in place",
			args: []string{"redline", "diff", "@defaults", "a.json", "b.json"},
			want: []string{"redline", "diff", "--granularity", "char", "--titles", "a.json", "b.json"},
		},
		{
			name: "later position",
			args: []string{"redline", "diff", "--simplify", "@json", "a.json"},
			want: []string{"redline", "diff", "--simplify", "-o", "json", "a.json"},
		},
		{
			name: "unknown set is dropped",
			args: []string{"redline", "diff", "@nope", "a.json"},
			want: []string{"redline", "diff", "a.json"},
		},
		{
			name: "other command",
			args: []string{"redline", "list", "@defaults"},
			want: []string{"redline", "list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processSetOnly(tt.args))
		})
	}
}

func TestProcessCommandArgs_Completion(t *testing.T) {
	withConfig(t, sets)
	args := []string{"redline", "completion", "@defaults"}
	assert.Equal(t, args, processCommandArgs(args))
}

func TestInitAndRunApp(t *testing.T) {
	withConfig(t, "a: 1\n")
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"completion", []string{"redline", "completion", "bash"}, 0},
		{"missing input", []string{"redline", "diff", filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, 2},
		{"unknown flag", []string{"redline", "list", "--bogus"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, initAndRunApp(tt.args))
		})
	}
}

func TestProcessCommandArgs_Stdin(t *testing.T) {
	withConfig(t, sets)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "from",
			args: []string{"redline", "diff", "-", "b.json"},
			want: []string{"redline", "diff", command.StdinArg, "b.json"},
		},
		{
			name: "with set",
			args: []string{"redline", "diff", "@json", "-", "b.json"},
			want: []string{"redline", "diff", "-o", "json", command.StdinArg, "b.json"},
		},
		{
			name: "completion untouched",
			args: []string{"redline", "completion", "-"},
			want: []string{"redline", "completion", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processCommandArgs(tt.args))
		})
	}
}
