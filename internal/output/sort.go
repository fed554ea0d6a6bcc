// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"
)

type sortKey struct {
	field         string
	descending    bool
	caseSensitive bool
}

// parseSort reads a spec of comma separated fields, each optionally
// prefixed by - (descending) and ! (case sensitive).
func parseSort(spec string) []sortKey {
	var keys []sortKey
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		k := sortKey{}
		if strings.HasPrefix(f, "-") {
			k.descending = true
			f = f[1:]
		}
		if strings.HasPrefix(f, "!") {
			k.caseSensitive = true
			f = f[1:]
		}
		if f == "" {
			continue
		}
		k.field = f
		keys = append(keys, k)
	}
	return keys
}

// SortDataset stably sorts rows by spec. Numbers compare numerically,
// everything else as strings.
func SortDataset(rows []map[string]any, spec string) {
	keys := parseSort(spec)
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.field], rows[j][k.field], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any, caseSensitive bool) int {
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}

	as, bs := InterfaceToString(a), InterfaceToString(b)
	if !caseSensitive {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
