package document

import "strings"

// PreambleTitle names the implicit section holding content that precedes the
// first heading of a document.
const PreambleTitle = "Portada / Introducción"

// MaxLevel is the deepest markdown heading level.
const MaxLevel = 6

// Section represents one logical block of a markdown document.
type Section struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Level   int    `json:"level"`   // 0 for the preamble, 1-6 for headings
	Content string `json:"content"` // body without the heading line
}

// IsPreamble reports whether the section was not introduced by a heading.
func (s Section) IsPreamble() bool {
	return s.Level <= 0
}

// Markdown reconstructs the section as it appears in an assembled document.
func (s Section) Markdown() string {
	if s.IsPreamble() {
		return s.Content
	}
	level := s.Level
	if level > MaxLevel {
		level = MaxLevel
	}
	return strings.Repeat("#", level) + " " + s.Title + "\n\n" + s.Content
}

// Find returns the section with the given id.
func Find(sections []Section, id int) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
