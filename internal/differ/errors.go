// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"errors"
	"fmt"
)

// ErrTooLarge is wrapped by a DiffError when an input exceeds Options.MaxSize.
var ErrTooLarge = errors.New("document exceeds the diff size limit")

// DiffError reports that no valid sequence of steps could be built.
type DiffError struct {
	Reason string
	Err    error
}

func (e *DiffError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("diff: %s: %v", e.Reason, e.Err)
	}
	return "diff: " + e.Reason
}

func (e *DiffError) Unwrap() error { return e.Err }

// UnsupportedChangeError reports a change to a node's type or attributes
// that cannot be expressed as a step.
type UnsupportedChangeError struct {
	Op   string
	Path string
}

func (e *UnsupportedChangeError) Error() string {
	return fmt.Sprintf("diff: unsupported change %s %s", e.Op, e.Path)
}
