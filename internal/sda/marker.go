package sda

import (
	"regexp"
	"strings"
	"sync"
)

// Labeled blocks are introduced by a marker. The grammar accepted for a label
// such as "Saberes Básicos:" is
//
//	marker = [ "**" ] phrase [ "**" ] colon [ "**" ] { whitespace }
//
// where phrase is the label without its trailing colon, matched case
// insensitively with any run of whitespace standing for a single space and
// optional spaces around "/". colon is ":" when the label ends in a colon and
// an optional ":" otherwise, so "**Contexto:**", "**Contexto**:" and
// "Contexto:" are all the same marker. An occurrence that opens a line (only
// whitespace before it) wins over an earlier one in the middle of a line; a
// mid-line occurrence is used only when no line opens with the marker.

var markerCache sync.Map // label -> *regexp.Regexp

func markerPattern(label string) *regexp.Regexp {
	if re, ok := markerCache.Load(label); ok {
		return re.(*regexp.Regexp)
	}

	name := strings.TrimSpace(strings.ReplaceAll(label, "**", ""))
	colon := `:?`
	if strings.HasSuffix(name, ":") {
		colon = `:`
		name = strings.TrimSpace(strings.TrimSuffix(name, ":"))
	}

	words := strings.Fields(name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	phrase := strings.Join(words, `\s+`)
	phrase = strings.ReplaceAll(phrase, `\s+/\s+`, `\s*/\s*`)

	re := regexp.MustCompile(`(?i)(?:\*\*)?` + phrase + `(?:\*\*)?` + colon + `(?:\*\*)?\s*`)
	markerCache.Store(label, re)
	return re
}

// FindMarker locates the first occurrence of label at or after offset from.
// It returns the byte offsets of the whole marker, including any bold markup
// and trailing whitespace, or -1, -1 when absent.
func FindMarker(content, label string, from int) (int, int) {
	if from < 0 {
		from = 0
	}
	if from > len(content) {
		return -1, -1
	}
	matches := markerPattern(label).FindAllStringIndex(content[from:], -1)
	if len(matches) == 0 {
		return -1, -1
	}
	best := matches[0]
	for _, m := range matches {
		if opensLine(content, from+m[0]) {
			best = m
			break
		}
	}
	return from + best[0], from + best[1]
}

func opensLine(content string, at int) bool {
	lineStart := strings.LastIndexByte(content[:at], '\n') + 1
	return strings.TrimSpace(content[lineStart:at]) == ""
}

// ExtractBlock returns the trimmed text following the first start marker and
// ending at the first end marker after it. An empty end reads to the end of
// content. When end is given but absent, the block stops at the earliest of
// the stop labels found after the start marker, or at the end of content.
// A missing start marker yields "".
func ExtractBlock(content, start, end string, stops ...string) string {
	_, from := FindMarker(content, start, 0)
	if from < 0 {
		return ""
	}

	to := len(content)
	if end != "" {
		if at, _ := FindMarker(content, end, from); at >= 0 {
			to = at
		} else {
			for _, stop := range stops {
				if at, _ := FindMarker(content, stop, from); at >= 0 && at < to {
					to = at
				}
			}
		}
	}
	return strings.TrimSpace(content[from:to])
}
