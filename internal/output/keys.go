// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/tidwall/gjson"
)

// DumpKeys writes the gjson paths available to --attrs, taken from the
// first row of raw. Objects are walked to depth levels.
func DumpKeys(w io.Writer, raw []byte, depth int) {
	first := gjson.ParseBytes(raw).Get("0")
	if !first.Exists() {
		return
	}
	var keys []string
	walkKeys(first, "", depth, &keys)
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}

func walkKeys(v gjson.Result, prefix string, depth int, keys *[]string) {
	v.ForEach(func(k, value gjson.Result) bool {
		name := k.String()
		if prefix != "" {
			name = prefix + "." + name
		}
		*keys = append(*keys, name)
		if depth > 0 && value.IsObject() {
			walkKeys(value, name, depth-1, keys)
		}
		return true
	})
}
