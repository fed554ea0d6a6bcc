// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"encoding/json"
	"fmt"

	"github.com/staranto/redline/internal/log"
	"github.com/staranto/redline/internal/model"
	"github.com/staranto/redline/internal/transform"
)

// Outcome classifies a processed revision.
type Outcome int

const (
	Clean Outcome = iota
	Conflicted
)

func (o Outcome) String() string {
	if o == Conflicted {
		return "conflict"
	}
	return "clean"
}

// Revision is one author's change to a base document. Base is the hash of
// the document the transform starts from.
type Revision struct {
	Author    string
	Base      string
	Transform *transform.Transform
}

// NewRevision wraps tr as a revision by author.
func NewRevision(author string, tr *transform.Transform) *Revision {
	return &Revision{Author: author, Base: tr.Base.Hash(), Transform: tr}
}

type revisionJSON struct {
	Author    string          `json:"author"`
	Base      string          `json:"base"`
	Transform json.RawMessage `json:"transform"`
}

func (r *Revision) MarshalJSON() ([]byte, error) {
	tr, err := json.Marshal(r.Transform)
	if err != nil {
		return nil, err
	}
	return json.Marshal(revisionJSON{Author: r.Author, Base: r.Base, Transform: tr})
}

// UnmarshalRevision decodes a revision and replays its transform.
func UnmarshalRevision(schema *model.Schema, data []byte) (*Revision, error) {
	var raw revisionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding revision: %w", err)
	}
	tr, err := transform.UnmarshalJSON(schema, raw.Transform)
	if err != nil {
		return nil, fmt.Errorf("decoding revision: %w", err)
	}
	if raw.Base == "" {
		raw.Base = tr.Base.Hash()
	}
	return &Revision{Author: raw.Author, Base: raw.Base, Transform: tr}, nil
}

// Conflict is a step of a revision that could not be rebased. From and To
// are the step's range in the revision's own coordinates.
type Conflict struct {
	Step   int    `json:"step"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Reason string `json:"reason"`
}

// Applied records how one revision was processed. Steps are the steps that
// went into the merged document on its behalf.
type Applied struct {
	Revision  *Revision
	Index     int
	Outcome   Outcome
	Resolved  bool
	Conflicts []Conflict
	Steps     []transform.Step
}

// Options control a merge.
type Options struct {
	// StopOnConflict ends processing at the first unresolved conflict.
	StopOnConflict bool
}

// Session is the result of a merge. Mapping maps positions in Base to
// positions in Result.
type Session struct {
	Base      *model.Node
	Revisions []*Revision
	Applied   []Applied
	Result    *model.Node
	Mapping   *transform.Mapping
	Steps     []transform.Step
}

// Err returns a ConflictError naming every unresolved conflicting revision,
// or nil.
func (s *Session) Err() error {
	var e ConflictError
	for _, a := range s.Applied {
		if a.Outcome == Conflicted {
			e.Revisions = append(e.Revisions, a.Index)
			e.Authors = append(e.Authors, a.Revision.Author)
		}
	}
	if len(e.Revisions) == 0 {
		return nil
	}
	return &e
}

// Merge applies revisions to base in order. resolutions, keyed by revision
// index, hold resolved documents for revisions that conflict. Every revision
// must have been computed against base.
func Merge(base *model.Node, revisions []*Revision, resolutions map[int]*model.Node, opts Options) (*Session, error) {
	hash := base.Hash()
	for i, r := range revisions {
		if r == nil || r.Transform == nil {
			return nil, fmt.Errorf("revision %d: missing transform", i)
		}
		if r.Base != hash || r.Transform.Base.Hash() != hash {
			return nil, fmt.Errorf("revision %d (%s): %w", i, r.Author, ErrBaseMismatch)
		}
	}

	tr := transform.New(base)
	s := &Session{Base: base, Revisions: revisions}

	for i, r := range revisions {
		a := rebase(tr, r)
		a.Index = i

		if a.Outcome == Conflicted {
			if res := resolutions[i]; res != nil {
				if err := resolve(tr, res, &a); err != nil {
					return nil, fmt.Errorf("resolving revision %d (%s): %w", i, r.Author, err)
				}
			}
		} else {
			for _, st := range a.Steps {
				if err := tr.Step(st); err != nil {
					return nil, fmt.Errorf("applying revision %d (%s): %w", i, r.Author, err)
				}
			}
		}

		log.Debugf("merge: revision %d (%s) %s, %d steps, resolved=%v", i, r.Author, a.Outcome, len(a.Steps), a.Resolved)
		s.Applied = append(s.Applied, a)
		if a.Outcome == Conflicted && opts.StopOnConflict {
			break
		}
	}

	s.Result = tr.Doc
	s.Mapping = tr.Mapping()
	s.Steps = tr.Steps
	return s, nil
}

// rebase maps r's steps over everything applied to tr so far. The mapping
// runs back through r's own steps, forward through tr, then through the
// rebased steps, with each rebased step mirroring its inverse.
func rebase(tr *transform.Transform, r *Revision) Applied {
	a := Applied{Revision: r, Outcome: Clean}
	own := r.Transform
	n := len(own.Steps)
	applied := tr.Mapping()

	m := transform.NewMapping()
	for i := n - 1; i >= 0; i-- {
		m.AppendMap(own.Steps[i].GetMap().Invert(), -1)
	}
	m.AppendMapping(applied)

	tentative := transform.New(tr.Doc)
	mapFrom := n
	for i, st := range own.Steps {
		toBase := m.Slice(mapFrom, n)
		mapped := st.Map(m.Slice(mapFrom, -1))
		mapFrom--

		from, to := st.Range()
		conflict := func(reason string) {
			a.Conflicts = append(a.Conflicts, Conflict{Step: i, From: from, To: to, Reason: reason})
			log.Tracef("merge: %s step %d %s: %s", r.Author, i, transform.Describe(st), reason)
		}

		if mapped == nil {
			conflict("target was deleted")
			continue
		}
		if reason := preImage(own.Docs[i], tentative.Doc, st, mapped); reason != "" {
			conflict(reason)
			continue
		}
		if _, ok := st.(*transform.ReplaceStep); ok && applied.Len() > 0 && !textblockAppend(own.Docs[i], from, to) {
			bFrom := toBase.Map(from, 1)
			bTo := max(bFrom, toBase.Map(to, -1))
			if touched(applied, bFrom) || (bTo != bFrom && touched(applied, bTo)) {
				conflict("anchored on content changed by an earlier revision")
				continue
			}
		}
		if err := tentative.Step(mapped); err != nil {
			conflict(err.Error())
			continue
		}
		m.AppendMap(mapped.GetMap(), mapFrom)
	}

	if len(a.Conflicts) > 0 {
		a.Outcome = Conflicted
		return a
	}
	a.Steps = tentative.Steps
	return a
}

// preImage compares the content a step was computed against with the
// content its rebased form targets.
func preImage(pre, cur *model.Node, st, mapped transform.Step) string {
	from, to := st.Range()
	want, err := pre.Slice(from, to)
	if err != nil {
		return err.Error()
	}
	mFrom, mTo := mapped.Range()
	got, err := cur.Slice(mFrom, mTo)
	if err != nil {
		return err.Error()
	}
	if !want.Eq(got) {
		return "target content changed"
	}
	return ""
}

// textblockAppend reports whether a step inserts at the end of a textblock.
func textblockAppend(doc *model.Node, from, to int) bool {
	if from != to {
		return false
	}
	r, err := doc.Resolve(from)
	if err != nil {
		return false
	}
	return r.Parent().IsTextblock() && from == r.End(r.Depth)
}

// touched reports whether an applied change inserted at, or removed content
// next to, base position pos.
func touched(applied *transform.Mapping, pos int) bool {
	left := applied.MapResult(pos, -1)
	right := applied.MapResult(pos, 1)
	return left.Pos != right.Pos || left.DeletedBefore() || left.DeletedAfter()
}

// resolve applies a resolved document in place of a conflicting revision.
func resolve(tr *transform.Transform, res *model.Node, a *Applied) error {
	if res.Type.Schema != tr.Doc.Type.Schema {
		return fmt.Errorf("resolution uses a different schema")
	}
	step, err := transform.MinimalReplace(tr.Doc, res)
	if err != nil {
		return err
	}
	if step != nil {
		if err := tr.Step(step); err != nil {
			return err
		}
		a.Steps = []transform.Step{step}
	}
	a.Outcome = Clean
	a.Resolved = true
	return nil
}
