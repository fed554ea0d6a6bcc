// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/redline/internal/attrs"
	"github.com/staranto/redline/internal/log"
)

// EnvDelim overrides the expression delimiter.
const EnvDelim = "REDLINE_FILTER_DELIM"

var filterRegex = regexp.MustCompile(`^([^!=~^@/<>]*)(!?[=~^@/<>])(.*)$`)

// Filter is one parsed expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses spec. Malformed expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	var filters []Filter
	for _, expr := range strings.Split(spec, delim) {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Warnf("invalid filter: %s", expr)
			continue
		}
		op := parts[2]
		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  strings.HasPrefix(op, "!"),
			Operand: strings.TrimPrefix(op, "!"),
			Value:   parts[3],
		})
	}
	return filters
}

// FilterDataset keeps the rows of candidates, a JSON array, matching every
// filter in spec and projects each onto attrs keyed by output key.
func FilterDataset(candidates gjson.Result, list attrs.AttrList, spec string) []map[string]any {
	filters := BuildFilters(spec)

	var rows []map[string]any
	for _, candidate := range candidates.Array() {
		if !matches(candidate, list, filters) {
			continue
		}
		row := make(map[string]any, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		rows = append(rows, row)
	}
	return rows
}

func matches(candidate gjson.Result, list attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		key := ""
		for _, attr := range list {
			if attr.OutputKey == f.Key {
				key = attr.Key
				break
			}
		}
		if key == "" {
			fmt.Fprintf(os.Stderr, "warning: filter key not found: %s\n", f.Key)
			continue
		}

		v := candidate.Get(key)
		if !v.Exists() {
			return false
		}

		var ok bool
		switch v.Type {
		case gjson.Number:
			ok = checkNumeric(v.Num, f)
		case gjson.JSON:
			ok = checkContains(v, f)
		default:
			ok = checkString(v.String(), f)
		}
		if !ok {
			return false
		}
	}
	return true
}

func checkNumeric(value float64, f Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return checkString(strconv.FormatFloat(value, 'f', -1, 64), f)
	}
	var r bool
	switch f.Operand {
	case "=", "~":
		r = value == tgt
	case ">":
		r = value > tgt
	case "<":
		r = value < tgt
	default:
		return checkString(strconv.FormatFloat(value, 'f', -1, 64), f)
	}
	return r != f.Negate
}

func checkString(value string, f Filter) bool {
	var r bool
	switch f.Operand {
	case "=":
		r = value == f.Value
	case "~":
		r = strings.EqualFold(value, f.Value)
	case "^":
		r = strings.HasPrefix(value, f.Value)
	case "@":
		r = strings.Contains(value, f.Value)
	case ">":
		r = value > f.Value
	case "<":
		r = value < f.Value
	case "/":
		re, err := regexp.Compile(f.Value)
		if err != nil {
			log.Warnf("invalid regex: %s", f.Value)
			return false
		}
		r = re.MatchString(value)
	default:
		return false
	}
	return r != f.Negate
}

// checkContains tests arrays and objects for a member or key equal to the
// target. Other operands compare the raw JSON.
func checkContains(value gjson.Result, f Filter) bool {
	if f.Operand != "@" {
		return checkString(value.Raw, f)
	}
	found := false
	if value.IsArray() {
		for _, item := range value.Array() {
			if item.String() == f.Value {
				found = true
				break
			}
		}
	} else {
		_, found = value.Map()[f.Value]
	}
	return found != f.Negate
}
