package editor

import (
	"errors"

	"aulaplan/internal/document"
	"aulaplan/internal/sda"
)

var (
	ErrSectionNotFound      = errors.New("section not found")
	ErrNotExpanded          = errors.New("section is collapsed")
	ErrNotLearningSituation = errors.New("section is not a learning situation")
	ErrNotStructured        = errors.New("section is not in structured mode")
	ErrNotRaw               = errors.New("section is in structured mode")

	errNoChange = errors.New("no change")
)

// Mode is how an expanded section is edited.
type Mode int

const (
	ModeRaw Mode = iota
	ModeStructured
)

func (m Mode) String() string {
	if m == ModeStructured {
		return "structured"
	}
	return "raw"
}

// State is the observable state of a section editor.
type State int

const (
	StateCollapsed State = iota
	StateExpandedRaw
	StateExpandedStructured
)

func (s State) String() string {
	switch s {
	case StateExpandedRaw:
		return "expanded-raw"
	case StateExpandedStructured:
		return "expanded-structured"
	default:
		return "collapsed"
	}
}

// submitFunc replaces the title and body of a section in the owning
// controller.
type submitFunc func(id int, title, content string)

// SectionEditor holds the edit state of one section. It never owns the
// section text: it reads the current view from the controller and submits
// complete replacements back to it.
type SectionEditor struct {
	id       int
	expanded bool
	mode     Mode
	record   *sda.SAStructure

	view     func() document.Section
	language func() string
	submit   submitFunc
}

func newSectionEditor(id int, view func() document.Section, language func() string, submit submitFunc) *SectionEditor {
	e := &SectionEditor{
		id:       id,
		view:     view,
		language: language,
		submit:   submit,
	}
	if sda.IsLearningSituation(view().Title) {
		e.mode = ModeStructured
	}
	return e
}

// ID returns the id of the edited section.
func (e *SectionEditor) ID() int { return e.id }

// Section returns the current view of the section.
func (e *SectionEditor) Section() document.Section { return e.view() }

// IsLearningSituation reports whether structured editing is offered, based
// on the current title.
func (e *SectionEditor) IsLearningSituation() bool {
	return sda.IsLearningSituation(e.view().Title)
}

// Mode returns the effective edit mode. Sections whose title is not a
// Learning Situation are always raw.
func (e *SectionEditor) Mode() Mode {
	if !e.IsLearningSituation() {
		return ModeRaw
	}
	return e.mode
}

// State returns the position in the collapsed / expanded-raw /
// expanded-structured state machine.
func (e *SectionEditor) State() State {
	switch {
	case !e.expanded:
		return StateCollapsed
	case e.Mode() == ModeStructured:
		return StateExpandedStructured
	default:
		return StateExpandedRaw
	}
}

// Expanded reports whether the section is open.
func (e *SectionEditor) Expanded() bool { return e.expanded }

// Toggle expands or collapses the section. Expanding into structured mode
// extracts a fresh record from the current content; collapsing discards it.
func (e *SectionEditor) Toggle() {
	e.setExpanded(!e.expanded)
}

// Expand opens the section if it is collapsed.
func (e *SectionEditor) Expand() {
	if !e.expanded {
		e.setExpanded(true)
	}
}

// Collapse closes the section if it is open.
func (e *SectionEditor) Collapse() {
	if e.expanded {
		e.setExpanded(false)
	}
}

func (e *SectionEditor) setExpanded(open bool) {
	e.expanded = open
	e.record = nil
	if open && e.Mode() == ModeStructured {
		e.load()
	}
}

// ToggleMode switches between raw and structured editing. It is only
// available while expanded and for Learning Situation sections.
func (e *SectionEditor) ToggleMode() error {
	if !e.expanded {
		return ErrNotExpanded
	}
	if !e.IsLearningSituation() {
		return ErrNotLearningSituation
	}
	e.record = nil
	if e.mode == ModeStructured {
		e.mode = ModeRaw
		return nil
	}
	e.mode = ModeStructured
	e.load()
	return nil
}

func (e *SectionEditor) load() {
	rec := sda.Extract(e.view().Content)
	e.record = &rec
}

// SetTitle renames the section. The cached record is dropped so the next
// structured edit starts from the stored body.
func (e *SectionEditor) SetTitle(title string) error {
	if !e.expanded {
		return ErrNotExpanded
	}
	e.record = nil
	e.submit(e.id, title, e.view().Content)
	return nil
}

// SetContent replaces the raw markdown body.
func (e *SectionEditor) SetContent(content string) error {
	if !e.expanded {
		return ErrNotExpanded
	}
	if e.Mode() != ModeRaw {
		return ErrNotRaw
	}
	e.record = nil
	e.submit(e.id, e.view().Title, content)
	return nil
}

// Record returns a copy of the structured record.
func (e *SectionEditor) Record() (sda.SAStructure, error) {
	if err := e.structured(); err != nil {
		return sda.SAStructure{}, err
	}
	return e.record.Clone(), nil
}

func (e *SectionEditor) structured() error {
	if !e.expanded {
		return ErrNotExpanded
	}
	if e.Mode() != ModeStructured {
		return ErrNotStructured
	}
	if e.record == nil {
		e.load()
	}
	return nil
}

// Update applies fn to a copy of the record. If fn succeeds the record is
// re-synthesized and the new body submitted to the controller.
func (e *SectionEditor) Update(fn func(r *sda.SAStructure) error) error {
	if err := e.structured(); err != nil {
		return err
	}
	next := e.record.Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	e.record = &next
	e.submit(e.id, e.view().Title, sda.Synthesize(next, e.language()))
	return nil
}

// ReplaceRecord swaps the whole record, as a form submit would.
func (e *SectionEditor) ReplaceRecord(r sda.SAStructure) error {
	return e.Update(func(cur *sda.SAStructure) error {
		*cur = r.Clone()
		if len(cur.Activities) == 0 {
			cur.AddActivity()
		}
		return nil
	})
}

// SetField edits one scalar field of the record.
func (e *SectionEditor) SetField(f sda.Field, value string) error {
	return e.Update(func(r *sda.SAStructure) error {
		return r.Set(f, value)
	})
}

// SetActivity replaces one row of the activity table.
func (e *SectionEditor) SetActivity(index int, a sda.Activity) error {
	return e.Update(func(r *sda.SAStructure) error {
		return r.SetActivity(index, a)
	})
}

// AddActivity appends a placeholder row.
func (e *SectionEditor) AddActivity() error {
	return e.Update(func(r *sda.SAStructure) error {
		r.AddActivity()
		return nil
	})
}

// RemoveActivity deletes a row. Removing the last remaining row is a no-op
// and leaves the section content untouched.
func (e *SectionEditor) RemoveActivity(index int) error {
	return e.Update(func(r *sda.SAStructure) error {
		n := len(r.Activities)
		if err := r.RemoveActivity(index); err != nil {
			return err
		}
		if len(r.Activities) == n {
			return errNoChange
		}
		return nil
	})
}
