// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"fmt"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
)

// Simplify folds runs of adjacent steps into single steps. Replaces whose
// ranges touch or overlap become the minimal replace between the document
// before the run and after it. Mark steps of the same mark and kind whose
// ranges touch or overlap become one step over the union. The result
// produces the same document with at most as many steps.
func Simplify(tr *Transform) (*Transform, error) {
	out := New(tr.Base)
	var cur Step

	flush := func() error {
		if cur == nil {
			return nil
		}
		err := out.Step(cur)
		cur = nil
		return err
	}

	for i, s := range tr.Steps {
		if cur == nil {
			cur = s
			continue
		}
		merged, ok, err := simplifyPair(out.Doc, cur, s)
		if err != nil {
			return nil, fmt.Errorf("simplifying step %d: %w", i, err)
		}
		if ok {
			cur = merged
			continue
		}
		if err := flush(); err != nil {
			return nil, fmt.Errorf("simplifying step %d: %w", i, err)
		}
		cur = s
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("simplifying: %w", err)
	}

	log.Debugf("simplify: %d steps -> %d", len(tr.Steps), len(out.Steps))
	return out, nil
}

// simplifyPair merges next into cur. pre is the document cur applies to. A
// nil step with ok set means the pair cancelled out.
func simplifyPair(pre *model.Node, cur, next Step) (Step, bool, error) {
	switch c := cur.(type) {
	case *ReplaceStep:
		n, ok := next.(*ReplaceStep)
		if !ok {
			return nil, false, nil
		}
		end := c.From + c.Slice.Size()
		if n.From > end || n.To < c.From {
			return nil, false, nil
		}
		mid, err := c.Apply(pre)
		if err != nil {
			return nil, false, err
		}
		post, err := n.Apply(mid)
		if err != nil {
			return nil, false, err
		}
		merged, err := MinimalReplace(pre, post)
		if err != nil {
			return nil, false, err
		}
		if merged == nil {
			return nil, true, nil
		}
		return merged, true, nil
	case *MarkStep:
		merged, ok := c.Merge(next)
		return merged, ok, nil
	default:
		return nil, false, nil
	}
}
