// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/redline/internal/meta"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/output"
	"github.com/staranto/redline/internal/transform"
)

// captureJSON is the raw output of a capture. The steps are the collected
// steps, which need not replay in order from base.
type captureJSON struct {
	Base  *model.Node       `json:"base"`
	Doc   *model.Node       `json:"doc"`
	Steps []json.RawMessage `json:"steps"`
}

// captureFetch replays an EVENTS file, a JSON array of {"steps":[..]}
// editor changes, through a capture session on BASE.
func captureFetch(_ context.Context, cmd *cli.Command) (*Dataset, error) {
	base, err := loadDoc(cmd, cmd.Args().Get(0))
	if err != nil {
		return nil, err
	}
	path := cmd.Args().Get(1)
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	events := gjson.ParseBytes(data)
	if !events.IsArray() {
		return nil, fmt.Errorf("%s: events must be a JSON array", path)
	}

	sess := transform.NewSession(base)
	var n int
	for i, ev := range events.Array() {
		var event transform.Event
		for j, raw := range ev.Get("steps").Array() {
			st, err := transform.StepFromJSON(schema, []byte(raw.Raw))
			if err != nil {
				return nil, fmt.Errorf("%s: event %d step %d: %w", path, i, j, err)
			}
			event.Steps = append(event.Steps, st)
		}
		if err := sess.Capture(event); err != nil {
			return nil, fmt.Errorf("%s: event %d: %w", path, i, err)
		}
		n++
	}

	steps := sess.Steps()
	out := captureJSON{Base: sess.Base(), Doc: sess.Doc(), Steps: make([]json.RawMessage, 0, len(steps))}
	for _, st := range steps {
		b, err := st.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Steps = append(out.Steps, b)
	}

	ds := &Dataset{Attrs: output.StepAttrs, Footer: fmt.Sprintf("%d events, %d steps", n, len(steps))}
	if ds.Rows, err = output.StepRows(steps); err != nil {
		return nil, err
	}
	if ds.Raw, err = json.Marshal(out); err != nil {
		return nil, err
	}
	return ds, nil
}

// captureCommandBuilder constructs the cli.Command for "capture".
func captureCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "capture",
		Usage:     "collect a stream of editor changes into compact steps",
		UsageText: "redline capture [options] BASE EVENTS",
		Flags:     []cli.Flag{NewSelectFlag()},
		MinArgs:   2,
		MaxArgs:   2,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return NewActionRunner("capture", captureFetch).Run(ctx, cmd)
		},
		Meta: meta,
	}).Build()
}
