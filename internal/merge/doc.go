// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package merge applies several revisions, each computed against the same
// base document, one after another.
//
// Each revision's steps are rebased over the revisions applied before it. A
// revision is applied only when every rebased step still targets the content
// it was computed against and no earlier revision rewrote the points it
// inserts at. Otherwise it is reported as a conflict and left out, unless the
// caller supplied a resolved document for it, in which case the resolution
// replaces the disputed region.
package merge
