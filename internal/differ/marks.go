// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/transform"
)

// marks emits the mark steps that give every inline position of the
// transform's document the mark set it has in the target. Content must
// already match. Annotation marks are left alone in annotated mode.
func (b *builder) marks() error {
	cur := b.tr.Doc
	ignore := func(m model.Mark) bool {
		return b.opts.Annotate && b.schema.IsAnnotation(m.Type)
	}

	var ranges, wantRanges [][2]int
	if b.opts.Annotate {
		ranges = deletedRanges(b.schema, cur)
		wantRanges = deletedRanges(b.schema, b.to)
	}

	var steps []transform.Step
	b.to.Descendants(func(want *model.Node, pos int, _ *model.Node, _ int) bool {
		if !want.IsInline() {
			return true
		}
		if b.opts.Annotate && isDeleted(b.schema, want) {
			return false
		}

		start, end := pos, pos+want.NodeSize()
		if b.opts.Annotate {
			logicalStart := pos - deletedBefore(wantRanges, pos)
			start = toActual(ranges, logicalStart, true)
			end = max(start, toActual(ranges, logicalStart+want.NodeSize(), false))
		}

		cur.NodesBetween(start, end, func(have *model.Node, at int, _ *model.Node, _ int) bool {
			if !have.IsInline() {
				return true
			}
			if b.opts.Annotate && isDeleted(b.schema, have) {
				return false
			}
			from, to := max(start, at), min(end, at+have.NodeSize())
			if from >= to {
				return false
			}
			for _, m := range have.Marks {
				if !ignore(m) && !m.IsInSet(want.Marks) {
					steps = append(steps, transform.RemoveMarkStep(from, to, m))
				}
			}
			for _, m := range want.Marks {
				if !ignore(m) && !m.IsInSet(have.Marks) {
					steps = append(steps, transform.AddMarkStep(from, to, m))
				}
			}
			return false
		})
		return false
	})

	for _, s := range steps {
		if err := b.step(s); err != nil {
			return err
		}
	}
	return nil
}

// deletedBefore is the size of the deleted ranges before pos.
func deletedBefore(ranges [][2]int, pos int) int {
	size := 0
	for _, r := range ranges {
		if r[0] >= pos {
			break
		}
		size += min(r[1], pos) - r[0]
	}
	return size
}
