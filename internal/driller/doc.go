// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller pulls a value out of a JSON input with a dotted path. It
// backs the --select flag that locates a document inside a wrapping record,
// export or API response.
package driller
