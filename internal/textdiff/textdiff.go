// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package textdiff

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Granularity selects the unit text is compared in.
type Granularity int

const (
	// Word compares whole words, keeping runs of whitespace and
	// punctuation as their own tokens.
	Word Granularity = iota
	// Char compares single characters.
	Char
)

func (g Granularity) String() string {
	switch g {
	case Word:
		return "word"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity parses "word" or "char".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "word", "words":
		return Word, nil
	case "char", "chars", "character", "characters":
		return Char, nil
	default:
		return Word, fmt.Errorf("unknown granularity %q (want word or char)", s)
	}
}

// Kind classifies a segment.
type Kind int

const (
	Equal Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "equal"
	}
}

// Segment is a run of text present in both inputs (Equal), only in the new
// one (Added) or only in the old one (Removed).
type Segment struct {
	Kind Kind
	Text string
}

// Segments diffs oldText against newText. Concatenating the Equal and
// Removed segments yields oldText; Equal and Added yield newText.
func Segments(oldText, newText string, g Granularity) []Segment {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Segment{{Kind: Equal, Text: oldText}}
	}

	dmp := diffmatchpatch.New()
	var diffs []diffmatchpatch.Diff
	decode := func(s string) string { return s }

	switch g {
	case Char:
		diffs = dmp.DiffMainRunes([]rune(oldText), []rune(newText), false)
	default:
		rOld, rNew, tokens := tokensToRunes(oldText, newText)
		diffs = dmp.DiffMainRunes(rOld, rNew, false)
		decode = func(s string) string {
			var b strings.Builder
			for _, r := range s {
				b.WriteString(tokens[runeIndex(r)])
			}
			return b.String()
		}
	}
	diffs = dmp.DiffCleanupMerge(diffs)

	out := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		text := decode(d.Text)
		if text == "" {
			continue
		}
		var kind Kind
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		default:
			kind = Equal
		}
		out = append(out, Segment{Kind: kind, Text: text})
	}
	return out
}

// tokensToRunes maps each distinct word token of both strings to a rune so
// the token sequences can be diffed as rune strings.
func tokensToRunes(oldText, newText string) ([]rune, []rune, []string) {
	index := map[string]int{}
	var tokens []string
	encode := func(s string) []rune {
		var out []rune
		iter := words.FromString(s)
		for iter.Next() {
			tok := iter.Value()
			i, ok := index[tok]
			if !ok {
				i = len(tokens)
				index[tok] = i
				tokens = append(tokens, tok)
			}
			out = append(out, indexRune(i))
		}
		return out
	}
	return encode(oldText), encode(newText), tokens
}

// Token runes skip the surrogate block so they survive conversion to string.
const (
	surrogateStart = 0xD800
	surrogateSize  = 0x800
)

func indexRune(i int) rune {
	r := rune(i + 1)
	if r >= surrogateStart {
		r += surrogateSize
	}
	return r
}

func runeIndex(r rune) int {
	if r >= surrogateStart+surrogateSize {
		r -= surrogateSize
	}
	return int(r) - 1
}

// Tokens splits s into the tokens used at the given granularity.
func Tokens(s string, g Granularity) []string {
	if g == Char {
		out := make([]string, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	var out []string
	iter := words.FromString(s)
	for iter.Next() {
		out = append(out, iter.Value())
	}
	return out
}
