// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/redline/internal/attrs"
	"github.com/staranto/redline/internal/config"
	"github.com/staranto/redline/internal/filters"
	"github.com/staranto/redline/internal/log"
)

// Options shape how a dataset is rendered.
type Options struct {
	// Format is text, json, yaml or raw.
	Format  string
	Filter  string
	Sort    string
	Color   bool
	Titles  bool
	Padding int
	Header  string
	Footer  string
}

// OptionsFrom reads the output flags of cmd. Color is on when --color is
// always, or auto and stdout is a terminal.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Format:  cmd.String("output"),
		Filter:  cmd.String("filter"),
		Sort:    cmd.String("sort"),
		Color:   ShouldColor(cmd.String("color"), os.Stdout),
		Titles:  cmd.Bool("titles"),
		Padding: int(cmd.Int("padding")),
	}
}

// ShouldColor resolves a --color mode against w.
func ShouldColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// InterfaceToString converts a cell value to a string. A custom empty value
// may be provided.
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}
	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Positions and counts are integral.
		return fmt.Sprintf("%.0f", value)
	case bool:
		return strconv.FormatBool(value)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(b)
	}
}

// SliceDiceSpit filters, transforms, sorts and renders raw, a JSON array of
// rows, to w.
func SliceDiceSpit(raw []byte, list attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	if opts.Format == "raw" {
		_, err := w.Write(raw)
		if err == nil && len(raw) > 0 && raw[len(raw)-1] != '\n' {
			_, err = fmt.Fprintln(w)
		}
		return err
	}

	list.SetGlobalTransformSpec()
	rows := filters.FilterDataset(gjson.ParseBytes(raw), list, opts.Filter)
	for _, row := range rows {
		for i := range list {
			if list[i].TransformSpec != "" && list[i].Key != "*" {
				row[list[i].OutputKey] = list[i].Transform(row[list[i].OutputKey])
			}
		}
	}
	SortDataset(rows, opts.Sort)
	log.Debugf("output: format=%s rows=%d", opts.Format, len(rows))

	switch opts.Format {
	case "json":
		b, err := json.Marshal(project(rows, list))
		if err != nil {
			return fmt.Errorf("encoding json output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(project(rows, list))
		if err != nil {
			return fmt.Errorf("encoding yaml output: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "", "text":
		TableWriter(rows, list, opts, w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// project drops hidden columns.
func project(rows []map[string]any, list attrs.AttrList) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]any, len(list))
		for _, attr := range list.Included() {
			p[attr.OutputKey] = row[attr.OutputKey]
		}
		out = append(out, p)
	}
	return out
}

// TableWriter renders rows as a borderless table with optional titles,
// colors, header and footer.
func TableWriter(rows []map[string]any, list attrs.AttrList, opts Options, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)
	if opts.Color {
		headerColor, evenColor, oddColor := getColors("output.colors")
		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	cols := list.Included()
	if len(rows) > 0 {
		cells := make([][]string, 0, len(rows))
		for _, row := range rows {
			line := make([]string, 0, len(cols))
			for _, attr := range cols {
				line = append(line, InterfaceToString(row[attr.OutputKey], "-"))
			}
			cells = append(cells, line)
		}

		t := table.New().
			BorderBottom(false).
			BorderTop(false).
			BorderLeft(false).
			BorderRight(false).
			Border(lipgloss.HiddenBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				var style lipgloss.Style
				switch {
				case row == table.HeaderRow:
					style = headerStyle
				case row%2 == 0:
					style = evenRowStyle
				default:
					style = oddRowStyle
				}
				if col > 0 {
					style = style.PaddingLeft(opts.Padding)
				}
				return style
			}).
			Rows(cells...)

		if opts.Titles {
			headers := make([]string, 0, len(cols))
			for _, attr := range cols {
				headers = append(headers, attr.OutputKey)
			}
			// https://github.com/charmbracelet/lipgloss/issues/261
			t = t.Headers(headers...).BorderHeader(false)
		}
		fmt.Fprintln(w, t)
	}

	if opts.Footer != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Footer))
	}
}

// getColors returns the title, even row and odd row colors. Config values
// under key win; otherwise a pair suited to the terminal background is used.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolve := func(key, light, dark string) color.Color {
		if c, err := config.GetString(key); err == nil {
			return lipgloss.Color(c)
		}
		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolve(key+".title", "#b08800", "#f6be00")
	even = resolve(key+".even", "#333333", "#ffffff")
	odd = resolve(key+".odd", "#0088a0", "#00c8f0")
	return
}
