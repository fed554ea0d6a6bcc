// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes the steps that turn one document into another.
//
// Both documents are serialized to JSON and compared structurally. The
// resulting patch operations are grouped until each group yields a valid
// document, and every group becomes either a text level edit or a single
// minimal replace. Optionally, content and marks are compared separately and
// mark differences are emitted as mark steps, and text edits can be emitted
// as annotated insertions and soft deletions instead of plain edits.
package differ
