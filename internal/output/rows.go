// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"

	"github.com/staranto/redline/internal/merge"
	"github.com/staranto/redline/internal/transform"
)

// Default --attrs for each dataset.
const (
	StepAttrs     = "step,type,from,to,summary::-60"
	OutcomeAttrs  = "index:#,author,outcome,resolved,steps,conflicts"
	ConflictAttrs = "revision:#,author,step,from,to,reason"
	RecordAttrs   = "id::12,kind,author,base::12,created_at:age:T,steps"
)

type stepRow struct {
	Step    int    `json:"step"`
	Type    string `json:"type"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Summary string `json:"summary"`
}

// StepRows is the dataset of a step list.
func StepRows(steps []transform.Step) ([]byte, error) {
	rows := make([]stepRow, 0, len(steps))
	for i, st := range steps {
		from, to := st.Range()
		rows = append(rows, stepRow{Step: i, Type: transform.Kind(st), From: from, To: to, Summary: transform.Describe(st)})
	}
	return json.Marshal(rows)
}

type outcomeRow struct {
	Index     int    `json:"index"`
	Author    string `json:"author"`
	Outcome   string `json:"outcome"`
	Resolved  bool   `json:"resolved"`
	Steps     int    `json:"steps"`
	Conflicts int    `json:"conflicts"`
}

// OutcomeRows is the dataset of a merge's per-revision outcomes.
func OutcomeRows(s *merge.Session) ([]byte, error) {
	rows := make([]outcomeRow, 0, len(s.Applied))
	for _, a := range s.Applied {
		rows = append(rows, outcomeRow{
			Index:     a.Index,
			Author:    a.Revision.Author,
			Outcome:   a.Outcome.String(),
			Resolved:  a.Resolved,
			Steps:     len(a.Steps),
			Conflicts: len(a.Conflicts),
		})
	}
	return json.Marshal(rows)
}

type conflictRow struct {
	Revision int    `json:"revision"`
	Author   string `json:"author"`
	merge.Conflict
}

// ConflictRows is the dataset of every unresolved conflict in a merge.
func ConflictRows(s *merge.Session) ([]byte, error) {
	var rows []conflictRow
	for _, a := range s.Applied {
		if a.Outcome != merge.Conflicted {
			continue
		}
		for _, c := range a.Conflicts {
			rows = append(rows, conflictRow{Revision: a.Index, Author: a.Revision.Author, Conflict: c})
		}
	}
	if rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rows)
}
