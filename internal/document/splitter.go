package document

import (
	"regexp"
	"strings"
	"unicode"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

type splitState int

const (
	noOpenSection splitState = iota
	inSection
)

// splitter accumulates lines into sections. Content seen before any heading
// is buffered in the noOpenSection state and only becomes a preamble section
// if it holds something other than blank lines.
type splitter struct {
	state   splitState
	current Section
	buf     []string
	nextID  int
	out     []Section
}

// Split parses raw markdown into a flat, ordered list of sections delimited by
// ATX headings. Section ids follow document order starting at 0.
func Split(markdown string) []Section {
	sp := &splitter{}
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	for _, line := range strings.Split(markdown, "\n") {
		if level, title, ok := parseHeading(line); ok {
			sp.flush()
			sp.open(level, title)
			continue
		}
		sp.buf = append(sp.buf, line)
	}
	sp.flush()
	return sp.out
}

func parseHeading(line string) (int, string, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimRightFunc(m[2], unicode.IsSpace), true
}

func (sp *splitter) open(level int, title string) {
	sp.state = inSection
	sp.current = Section{Title: title, Level: level}
}

func (sp *splitter) flush() {
	body := strings.TrimSpace(strings.Join(sp.buf, "\n"))
	sp.buf = sp.buf[:0]

	switch sp.state {
	case inSection:
		sp.current.Content = body
		sp.emit(sp.current)
	case noOpenSection:
		if body != "" {
			sp.emit(Section{Title: PreambleTitle, Level: 0, Content: body})
		}
	}
}

func (sp *splitter) emit(s Section) {
	s.ID = sp.nextID
	sp.nextID++
	sp.out = append(sp.out, s)
}
