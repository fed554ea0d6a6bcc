// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/staranto/redline/internal/store"
)

// ErrAborted is returned when the user quits without choosing.
var ErrAborted = errors.New("selection aborted")

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Accept key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Accept, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "diff")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
}

var (
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0088a0", Dark: "#00c8f0"})
)

// Model lists records and lets the user mark exactly two.
type Model struct {
	items    []store.Meta
	cursor   int
	selected []int
	accepted bool
	help     help.Model
}

func New(items []store.Meta) Model {
	return Model{items: items, help: help.New()}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, keys.Quit):
		m.selected = nil
		return m, tea.Quit
	case key.Matches(k, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(k, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(k, keys.Toggle):
		if len(m.items) == 0 {
			break
		}
		if i := slices.Index(m.selected, m.cursor); i >= 0 {
			m.selected = slices.Delete(slices.Clone(m.selected), i, i+1)
		} else if len(m.selected) < 2 {
			m.selected = append(slices.Clone(m.selected), m.cursor)
		}
	case key.Matches(k, keys.Accept):
		if len(m.selected) == 2 {
			m.accepted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Select two records to diff:\n\n")
	for i, it := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		mark := " "
		if slices.Contains(m.selected, i) {
			mark = "x"
		}
		line := fmt.Sprintf("%s [%s] %s %-8s %-12s %3d steps  %s",
			cursor, mark, short(it.ID), it.Kind, it.Author, it.Steps, humanize.Time(it.CreatedAt))
		switch {
		case mark == "x":
			line = selectedStyle.Render(line)
		case m.cursor == i:
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.help.View(keys) + "\n")
	return b.String()
}

// Selected returns the chosen records, oldest listing first, once the user
// has accepted.
func (m Model) Selected() []store.Meta {
	if !m.accepted {
		return nil
	}
	idx := slices.Sorted(slices.Values(m.selected))
	out := make([]store.Meta, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.items[i])
	}
	return out
}

// Select runs the picker on the terminal and returns the two chosen records.
func Select(items []store.Meta, opts ...tea.ProgramOption) ([]store.Meta, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("need at least two records to pick from, have %d", len(items))
	}
	final, err := tea.NewProgram(New(items), opts...).Run()
	if err != nil {
		return nil, err
	}
	chosen := final.(Model).Selected()
	if len(chosen) != 2 {
		return nil, ErrAborted
	}
	return chosen, nil
}

func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
