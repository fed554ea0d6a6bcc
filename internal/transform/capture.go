// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"fmt"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
)

// Event is one editor change.
type Event struct {
	Steps []Step
}

// MultiStepError is returned for an event that carries more than one step.
type MultiStepError struct {
	Count int
}

func (e *MultiStepError) Error() string {
	return fmt.Sprintf("change carries %d steps, only single-step changes can be captured", e.Count)
}

// Session accumulates single-step editor changes into a compact list of
// steps, merging each change into an earlier step when they combine.
type Session struct {
	base  *model.Node
	doc   *model.Node
	steps []Step
}

// NewSession starts a capture on base.
func NewSession(base *model.Node) *Session {
	return &Session{base: base, doc: base}
}

// Capture records one change. An event without steps is ignored.
func (s *Session) Capture(ev Event) error {
	switch n := len(ev.Steps); {
	case n == 0:
		return nil
	case n > 1:
		return &MultiStepError{Count: n}
	}

	step := ev.Steps[0]
	doc, err := step.Apply(s.doc)
	if err != nil {
		return fmt.Errorf("capturing change: %w", err)
	}
	s.doc = doc

	m := step.GetMap()
	steps := make([]Step, 0, len(s.steps)+1)
	for _, c := range s.steps {
		if mapped := c.Map(m); mapped != nil {
			steps = append(steps, mapped)
		}
	}

	merged := false
	for i, c := range steps {
		if ms, ok := c.Merge(step); ok {
			steps[i] = ms
			merged = true
			break
		}
	}
	if !merged {
		steps = append(steps, step)
	}
	s.steps = steps

	log.Tracef("capture: %s, %d collected", Describe(step), len(s.steps))
	return nil
}

// Steps returns the collected steps.
func (s *Session) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Doc returns the document after every captured change.
func (s *Session) Doc() *model.Node {
	return s.doc
}

// Base returns the document the session started from.
func (s *Session) Base() *model.Node {
	return s.base
}

// Len is the number of collected steps.
func (s *Session) Len() int {
	return len(s.steps)
}
