// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transform

// Mapping is a pipeline of step maps. Maps can be marked as mirrors of each
// other when one undoes the other, which lets positions inside a deleted and
// then restored range come back unchanged.
type Mapping struct {
	maps   []*StepMap
	mirror []int
	from   int
	to     int
}

// NewMapping builds a mapping over maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{maps: maps, to: len(maps)}
}

// Maps returns the maps in the mapping's window.
func (m *Mapping) Maps() []*StepMap {
	return m.maps[m.from:m.to]
}

// Len is the number of maps in the mapping's window.
func (m *Mapping) Len() int {
	return m.to - m.from
}

// Slice returns a mapping over maps[from:to] that shares mirror information.
// A negative to means the end.
func (m *Mapping) Slice(from, to int) *Mapping {
	if to < 0 {
		to = len(m.maps)
	}
	return &Mapping{maps: m.maps, mirror: m.mirror, from: from, to: to}
}

// AppendMap adds a map. mirrors, when not negative, is the index of the map
// this one mirrors.
func (m *Mapping) AppendMap(sm *StepMap, mirrors int) {
	m.maps = append(m.maps[:m.to:m.to], sm)
	m.to = len(m.maps)
	if mirrors >= 0 {
		m.SetMirror(len(m.maps)-1, mirrors)
	}
}

// AppendMapping adds all maps of other, keeping its internal mirrors.
func (m *Mapping) AppendMapping(other *Mapping) {
	startSize := len(m.maps)
	for i := 0; i < len(other.maps); i++ {
		mirr := other.getMirror(i)
		if mirr >= 0 && mirr < i {
			m.AppendMap(other.maps[i], startSize+mirr)
		} else {
			m.AppendMap(other.maps[i], -1)
		}
	}
}

// AppendMappingInverted adds the inverted maps of other in reverse order.
func (m *Mapping) AppendMappingInverted(other *Mapping) {
	totalSize := len(m.maps) + len(other.maps)
	for i := len(other.maps) - 1; i >= 0; i-- {
		mirr := other.getMirror(i)
		if mirr >= 0 && mirr > i {
			m.AppendMap(other.maps[i].Invert(), totalSize-mirr-1)
		} else {
			m.AppendMap(other.maps[i].Invert(), -1)
		}
	}
}

// Invert returns a mapping that undoes this one.
func (m *Mapping) Invert() *Mapping {
	inv := &Mapping{}
	inv.AppendMappingInverted(m)
	return inv
}

func (m *Mapping) getMirror(n int) int {
	for i := 0; i < len(m.mirror); i++ {
		if m.mirror[i] == n {
			if i%2 == 1 {
				return m.mirror[i-1]
			}
			return m.mirror[i+1]
		}
	}
	return -1
}

// SetMirror records that maps n and k undo each other.
func (m *Mapping) SetMirror(n, k int) {
	m.mirror = append(m.mirror, n, k)
}

// Map maps pos through every map in the window.
func (m *Mapping) Map(pos, assoc int) int {
	if len(m.mirror) > 0 {
		return m.mapPos(pos, assoc, true).Pos
	}
	for i := m.from; i < m.to; i++ {
		pos = m.maps[i].Map(pos, assoc)
	}
	return pos
}

// MapResult maps pos and accumulates deletion information.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	return m.mapPos(pos, assoc, false)
}

func (m *Mapping) mapPos(pos, assoc int, simple bool) MapResult {
	delInfo := 0
	for i := m.from; i < m.to; i++ {
		sm := m.maps[i]
		result := sm.MapResult(pos, assoc)
		if result.Recover != NoRecover {
			if corr := m.getMirror(i); corr >= 0 && corr > i && corr < m.to {
				i = corr
				pos = m.maps[corr].Recover(result.Recover)
				continue
			}
		}
		delInfo |= result.delInfo
		pos = result.Pos
	}
	if simple {
		return MapResult{Pos: pos, Recover: NoRecover}
	}
	return MapResult{Pos: pos, delInfo: delInfo, Recover: NoRecover}
}
