package document

import "strings"

// Assemble joins sections back into a single markdown document. Preamble
// sections are emitted verbatim; every other section gets its heading line
// restored. Any section list is accepted.
func Assemble(sections []Section) string {
	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, s.Markdown())
	}
	return strings.Join(blocks, "\n\n")
}

// Outline returns one line per section, indented by level and led by the
// heading marks, or "·" for the preamble.
func Outline(sections []Section) []string {
	lines := make([]string, 0, len(sections))
	for _, s := range sections {
		indent := ""
		if s.Level > 1 {
			indent = strings.Repeat("  ", s.Level-1)
		}
		marker := "·"
		if !s.IsPreamble() {
			marker = strings.Repeat("#", s.Level)
		}
		lines = append(lines, indent+marker+" "+s.Title)
	}
	return lines
}
