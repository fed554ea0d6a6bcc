// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package model implements the immutable document tree the diff, transform
// and merge engines operate on. A document is a single root block node whose
// positions are counted over a flattened token stream: each rune of text is
// one unit, each open and close of a non-leaf block is one unit, and a leaf
// block is a single unit.
//
// Nodes are never mutated once built. Every edit (Replace, Cut, Mark) returns
// a new node that shares unchanged children with its source.
package model
