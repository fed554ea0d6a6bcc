// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

import "fmt"

const (
	lower16  = 0xffff
	factor16 = 1 << 16
)

// Deletion flags carried by a MapResult.
const (
	delBefore = 1 << iota
	delAfter
	delAcross
	delSide
)

// NoRecover marks a MapResult without recovery information.
const NoRecover = -1

func makeRecover(index, offset int) int { return index + offset*factor16 }
func recoverIndex(value int) int        { return value & lower16 }
func recoverOffset(value int) int       { return (value - (value & lower16)) / factor16 }

// MapResult is a mapped position with information about deletions around
// it.
type MapResult struct {
	Pos     int
	delInfo int
	// Recover identifies the replaced range the position fell into, so a
	// mirroring map can restore it exactly. NoRecover when unset.
	Recover int
}

// Deleted reports whether the content on the side given by assoc was
// deleted.
func (r MapResult) Deleted() bool { return r.delInfo&delSide > 0 }

// DeletedBefore reports whether the token before the position was deleted.
func (r MapResult) DeletedBefore() bool { return r.delInfo&(delBefore|delAcross) > 0 }

// DeletedAfter reports whether the token after the position was deleted.
func (r MapResult) DeletedAfter() bool { return r.delInfo&(delAfter|delAcross) > 0 }

// DeletedAcross reports whether the position sat inside a deleted range.
func (r MapResult) DeletedAcross() bool { return r.delInfo&delAcross > 0 }

// Mappable is anything positions can be mapped through.
type Mappable interface {
	Map(pos, assoc int) int
	MapResult(pos, assoc int) MapResult
}

// StepMap describes the ranges a step replaced as triples of
// (start, oldSize, newSize).
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyMap maps every position to itself.
var EmptyMap = &StepMap{}

// NewStepMap builds a map from (start, oldSize, newSize) triples.
func NewStepMap(ranges ...int) *StepMap {
	if len(ranges)%3 != 0 {
		panic(fmt.Sprintf("step map ranges must be triples, got %d values", len(ranges)))
	}
	if len(ranges) == 0 {
		return EmptyMap
	}
	return &StepMap{ranges: ranges}
}

// Recover returns the position a recover value refers to.
func (m *StepMap) Recover(value int) int {
	diff := 0
	index := recoverIndex(value)
	if !m.inverted {
		for i := 0; i < index; i++ {
			diff += m.ranges[i*3+2] - m.ranges[i*3+1]
		}
	}
	return m.ranges[index*3] + diff + recoverOffset(value)
}

// Map maps pos. assoc < 0 keeps a position at an insertion on its left
// side, otherwise it moves past the inserted content.
func (m *StepMap) Map(pos, assoc int) int {
	return m.mapPos(pos, assoc, true).Pos
}

// MapResult maps pos and reports deletion information.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc, false)
}

func (m *StepMap) mapPos(pos, assoc int, simple bool) MapResult {
	diff := 0
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize > 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			if simple {
				return MapResult{Pos: result, Recover: NoRecover}
			}
			rec := makeRecover(i/3, pos-start)
			if (assoc < 0 && pos == start) || (assoc >= 0 && pos == end) {
				rec = NoRecover
			}
			del := delAcross
			switch pos {
			case start:
				del = delAfter
			case end:
				del = delBefore
			}
			if (assoc < 0 && pos != start) || (assoc >= 0 && pos != end) {
				del |= delSide
			}
			return MapResult{Pos: result, delInfo: del, Recover: rec}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff, Recover: NoRecover}
}

// Touches reports whether pos lies within or at the edges of the range a
// recover value points at.
func (m *StepMap) Touches(pos, recover int) bool {
	diff := 0
	index := recoverIndex(recover)
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize := m.ranges[i+oldIndex]
		if pos <= start+oldSize && i == index*3 {
			return true
		}
		diff += m.ranges[i+newIndex] - oldSize
	}
	return false
}

// ForEach calls fn for each replaced range with its old and new extent.
func (m *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	diff := 0
	oldIndex, newIndex := 1, 2
	if m.inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart, newStart := start, start
		if m.inverted {
			oldStart -= diff
		} else {
			newStart += diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert returns a map that maps positions in the new document back to the
// old one.
func (m *StepMap) Invert() *StepMap {
	return &StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// Empty reports whether the map changes nothing.
func (m *StepMap) Empty() bool {
	return len(m.ranges) == 0
}

func (m *StepMap) String() string {
	prefix := ""
	if m.inverted {
		prefix = "-"
	}
	return fmt.Sprintf("%s%v", prefix, m.ranges)
}
