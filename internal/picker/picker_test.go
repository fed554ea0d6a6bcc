// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package picker

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/redline/internal/store"
)

func items() []store.Meta {
	now := time.Now()
	return []store.Meta{
		{ID: "aaaaaaaaaaaaaaaa", Kind: store.KindRevision, Author: "alice", Steps: 2, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "bbbbbbbbbbbbbbbb", Kind: store.KindRevision, Author: "bob", Steps: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: "cccccccccccccccc", Kind: store.KindMerge, Author: "carol", Steps: 5, CreatedAt: now},
	}
}

var (
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	q     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

// drive feeds msgs to m and reports whether the last one quit.
func drive(m Model, msgs ...tea.Msg) (Model, bool) {
	var cmd tea.Cmd
	var next tea.Model = m
	for _, msg := range msgs {
		next, cmd = next.Update(msg)
	}
	quit := false
	if cmd != nil {
		_, quit = cmd().(tea.QuitMsg)
	}
	return next.(Model), quit
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		msgs     []tea.Msg
		quit     bool
		selected []string
	}{
		{"accept two", []tea.Msg{down, down, space, up, up, space, enter}, true, []string{"alice", "carol"}},
		{"enter needs two", []tea.Msg{space, enter}, false, nil},
		{"toggle off", []tea.Msg{space, down, space, space, enter}, false, nil},
		{"third ignored", []tea.Msg{space, down, space, down, space, enter}, true, []string{"alice", "bob"}},
		{"cursor clamps", []tea.Msg{up, space, down, down, down, down, space, enter}, true, []string{"alice", "carol"}},
		{"escape aborts", []tea.Msg{space, down, space, esc}, true, nil},
		{"q aborts", []tea.Msg{space, down, space, q}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, quit := drive(New(items()), tt.msgs...)
			assert.Equal(t, tt.quit, quit)
			var got []string
			for _, it := range m.Selected() {
				got = append(got, it.Author)
			}
			assert.Equal(t, tt.selected, got)
		})
	}
}

func TestView(t *testing.T) {
	m, _ := drive(New(items()), down, space)
	v := m.View()
	assert.Contains(t, v, "Select two records")
	assert.Contains(t, v, "> [x] bbbbbbbbbbbb")
	assert.Contains(t, v, "  [ ] aaaaaaaaaaaa")
	assert.Contains(t, v, "2 hours ago")
	assert.Contains(t, v, "toggle")
}

func TestUpdate_EmptyList(t *testing.T) {
	m, quit := drive(New(nil), space, down, enter)
	assert.False(t, quit)
	assert.Empty(t, m.Selected())
}

func TestSelect_TooFew(t *testing.T) {
	_, err := Select(items()[:1])
	require.Error(t, err)
}
