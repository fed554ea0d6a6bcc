// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBaseMismatch is returned for a revision computed against another base.
var ErrBaseMismatch = errors.New("revision was computed against a different base")

// ConflictError lists the revisions left unapplied by a merge.
type ConflictError struct {
	Revisions []int
	Authors   []string
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Revisions))
	for i, r := range e.Revisions {
		parts[i] = fmt.Sprintf("%d (%s)", r, e.Authors[i])
	}
	noun := "revision"
	if len(parts) != 1 {
		noun = "revisions"
	}
	return fmt.Sprintf("merge: %d %s in conflict: %s", len(parts), noun, strings.Join(parts, ", "))
}
