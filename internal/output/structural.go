// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/redline/internal/model"
)

// Structural writes an annotated JSON view of the differences between two
// documents, one line per value with +/- markers.
func Structural(w io.Writer, from, to *model.Node, color bool) error {
	left, err := json.Marshal(from)
	if err != nil {
		return err
	}
	right, err := json.Marshal(to)
	if err != nil {
		return err
	}

	d, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return fmt.Errorf("comparing documents: %w", err)
	}
	if !d.Modified() {
		_, err = fmt.Fprintln(w, "documents are identical")
		return err
	}

	var leftMap map[string]any
	if err := json.Unmarshal(left, &leftMap); err != nil {
		return err
	}
	f := formatter.NewAsciiFormatter(leftMap, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	s, err := f.Format(d)
	if err != nil {
		return fmt.Errorf("formatting document diff: %w", err)
	}
	_, err = io.WriteString(w, s)
	return err
}
