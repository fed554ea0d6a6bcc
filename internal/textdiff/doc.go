// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package textdiff splits a pair of strings into equal, added and removed
// segments at character or word granularity.
package textdiff
