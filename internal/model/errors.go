// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned when a text node would be created without text.
var ErrEmptyText = errors.New("empty text nodes are not allowed")

// ValidationError reports content or attributes that violate the schema.
type ValidationError struct {
	Type   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Type, e.Reason)
}

// RangeError reports a position outside of a node.
type RangeError struct {
	Pos  int
	Size int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("position %d out of range (size %d)", e.Pos, e.Size)
}

// ReplaceError reports a replace that cannot produce a valid tree.
type ReplaceError struct {
	Reason string
	Err    error
}

func (e *ReplaceError) Error() string {
	if e.Err != nil {
		return "replace: " + e.Reason + ": " + e.Err.Error()
	}
	return "replace: " + e.Reason
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}
