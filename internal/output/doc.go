// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders command results. Results are JSON arrays of rows
// which are filtered, projected onto --attrs columns, sorted and then
// written as a text table, json, yaml or the raw JSON the command produced.
package output
