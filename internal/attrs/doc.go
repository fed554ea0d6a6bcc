// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package attrs parses --attrs column specs. Each comma separated spec is
// key[:title[:transform]] where key is a gjson path into a row, title is the
// column heading and transform is a combination of:
//
//   - t : RFC3339 timestamp to local time
//   - T : RFC3339 timestamp to a relative age ("3 hours ago")
//   - u / l : upper or lower case
//   - N : truncate to N runes; -N keeps both ends around ".."
//
// A leading ! keeps the column for filtering and sorting but hides it, and
// the key * applies its transform to every column.
package attrs
