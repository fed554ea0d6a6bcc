// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package transform implements steps, the atomic and invertible edits applied
// to a document, and the machinery built on them: position maps that carry
// positions across edits, transforms that record a sequence of steps, a
// simplifier that folds adjacent steps together, and a capture session that
// accumulates editor changes into a compact step list.
package transform
