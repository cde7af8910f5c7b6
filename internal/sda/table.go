package sda

import (
	"regexp"
	"strings"
)

// Table rows are recognised line by line:
//
//	row       = any line containing "|"
//	separator = row whose every cell is ":"? "-"{3,} ":"?, e.g. "| :--- | ---: |"
//	cells     = row split on unescaped "|", each cell trimmed, dropping the empty
//	            cell produced by a leading and by a trailing pipe
//
// Inside cells "\|" stands for a literal pipe and "<br>" for a line break.

var (
	delimiterRe = regexp.MustCompile(`^:?-{3,}:?$`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// IsTableRow reports whether line is part of a pipe table.
func IsTableRow(line string) bool {
	return strings.Contains(line, "|")
}

// IsSeparatorRow reports whether line is a table delimiter row such as
// "| :--- | ---: |".
func IsSeparatorRow(line string) bool {
	if !IsTableRow(line) {
		return false
	}
	cells := SplitRow(line)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !delimiterRe.MatchString(c) {
			return false
		}
	}
	return true
}

// tableRows returns the pipe lines of block in order, separators included.
func tableRows(block string) []string {
	var rows []string
	for _, line := range strings.Split(block, "\n") {
		if IsTableRow(line) {
			rows = append(rows, line)
		}
	}
	return rows
}

// SplitRow splits a table row into cell values.
func SplitRow(line string) []string {
	var (
		cells []string
		cur   strings.Builder
	)
	line = strings.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	cells = append(cells, cur.String())

	for i := range cells {
		cells[i] = decodeCell(strings.TrimSpace(cells[i]))
	}
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func decodeCell(v string) string {
	return lineBreakRe.ReplaceAllString(v, "\n")
}

// EncodeCell makes a value safe to place inside a single table cell.
func EncodeCell(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "|", `\|`)
	return strings.ReplaceAll(v, "\n", "<br>")
}

// FormatRow renders cells as "| a | b | c |".
func FormatRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(EncodeCell(c))
		b.WriteString(" |")
	}
	return b.String()
}

// SeparatorRow renders a left-aligned delimiter row for n columns.
func SeparatorRow(n int) string {
	return "|" + strings.Repeat(" :--- |", n)
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
