// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters applies --filter expressions to table rows. Each
// expression is key, operator, target, for example "author=alice" or
// "steps>3". Keys name a column by its output key (see package attrs).
//
// Operators, each negated by a leading "!":
//
//   - = : equal
//   - ~ : equal ignoring case
//   - ^ : prefix
//   - @ : contains
//   - / : regular expression match
//   - < and > : ordering, numeric when both sides are numbers
//
// Expressions are comma separated unless REDLINE_FILTER_DELIM names
// another delimiter.
package filters
