package editor

import (
	"fmt"

	"aulaplan/internal/document"
)

// Controller owns the canonical markdown of one document during an editing
// session. Section editors only see derived views and hand complete
// replacements back through the controller.
type Controller struct {
	markdown string
	language string
	sections []document.Section
	editors  []*SectionEditor
	dirty    bool
}

// NewController splits markdown into sections and opens an editor for each.
// The first section starts expanded.
func NewController(markdown, language string) *Controller {
	c := &Controller{language: language}
	c.Reset(markdown)
	return c
}

// Reset replaces the canonical markdown, for instance after an AI
// refinement, and starts a fresh editing session over it.
func (c *Controller) Reset(markdown string) {
	c.markdown = markdown
	c.sections = document.Split(markdown)
	c.editors = make([]*SectionEditor, len(c.sections))
	for i := range c.sections {
		id := c.sections[i].ID
		c.editors[i] = newSectionEditor(
			id,
			func() document.Section { return c.section(id) },
			func() string { return c.language },
			c.replace,
		)
	}
	if len(c.editors) > 0 {
		c.editors[0].Expand()
	}
	c.dirty = false
}

func (c *Controller) replace(id int, title, content string) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.sections[i].Title = title
	c.sections[i].Content = content
	c.dirty = true
}

func (c *Controller) section(id int) document.Section {
	if i := c.index(id); i >= 0 {
		return c.sections[i]
	}
	return document.Section{ID: id}
}

func (c *Controller) index(id int) int {
	if id >= 0 && id < len(c.sections) && c.sections[id].ID == id {
		return id
	}
	for i, s := range c.sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Markdown returns the canonical markdown as of the last Assemble or Reset.
func (c *Controller) Markdown() string { return c.markdown }

// Language returns the document language used for synthesis.
func (c *Controller) Language() string { return c.language }

// Dirty reports whether sections changed since the last Assemble or Reset.
func (c *Controller) Dirty() bool { return c.dirty }

// Sections returns a copy of the current sections.
func (c *Controller) Sections() []document.Section {
	return append([]document.Section(nil), c.sections...)
}

// Editors returns the section editors in document order.
func (c *Controller) Editors() []*SectionEditor {
	return append([]*SectionEditor(nil), c.editors...)
}

// Editor returns the editor of section id.
func (c *Controller) Editor(id int) (*SectionEditor, error) {
	i := c.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrSectionNotFound, id)
	}
	return c.editors[i], nil
}

// Preview assembles the current sections without committing them.
func (c *Controller) Preview() string {
	return document.Assemble(c.sections)
}

// Assemble joins the edited sections into markdown, which becomes the new
// canonical document.
func (c *Controller) Assemble() string {
	c.markdown = document.Assemble(c.sections)
	c.dirty = false
	return c.markdown
}
