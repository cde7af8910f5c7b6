package wizard

import (
	"context"

	"aulaplan/internal/document"
	"aulaplan/internal/editor"
	"aulaplan/internal/sda"
	"aulaplan/internal/storage"
)

// SectionView is a section of the stored markdown plus how it can be
// edited.
type SectionView struct {
	document.Section
	LearningSituation bool `json:"learningSituation"`
}

// Sections splits the stored markdown. Ids are only meaningful against the
// markdown they were computed from.
func (s *Service) Sections(ctx context.Context, id string) ([]SectionView, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return sectionViews(document.Split(doc.Markdown)), nil
}

func sectionViews(sections []document.Section) []SectionView {
	out := make([]SectionView, len(sections))
	for i, sec := range sections {
		out[i] = SectionView{Section: sec, LearningSituation: sda.IsLearningSituation(sec.Title)}
	}
	return out
}

// SectionPatch carries the optional replacements of a section edit.
type SectionPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// UpdateSection renames a section or replaces its raw body.
func (s *Service) UpdateSection(ctx context.Context, id string, sectionID int, patch SectionPatch) (*SectionView, error) {
	var out SectionView
	err := s.editSection(ctx, id, sectionID, func(ed *editor.SectionEditor) error {
		if patch.Title != nil {
			if err := ed.SetTitle(*patch.Title); err != nil {
				return err
			}
		}
		if patch.Content != nil {
			if ed.Mode() == editor.ModeStructured {
				if err := ed.ToggleMode(); err != nil {
					return err
				}
			}
			if err := ed.SetContent(*patch.Content); err != nil {
				return err
			}
		}
		sec := ed.Section()
		out = SectionView{Section: sec, LearningSituation: sda.IsLearningSituation(sec.Title)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Record extracts the structured view of a Learning Situation section.
func (s *Service) Record(ctx context.Context, id string, sectionID int) (sda.SAStructure, error) {
	c, err := s.OpenEditor(ctx, id)
	if err != nil {
		return sda.SAStructure{}, err
	}
	ed, err := structuredEditor(c, sectionID)
	if err != nil {
		return sda.SAStructure{}, err
	}
	return ed.Record()
}

// UpdateRecord replaces the structured record of a section and stores the
// re-synthesized markdown.
func (s *Service) UpdateRecord(ctx context.Context, id string, sectionID int, rec sda.SAStructure) (sda.SAStructure, error) {
	return s.editRecord(ctx, id, sectionID, func(ed *editor.SectionEditor) error {
		return ed.ReplaceRecord(rec)
	})
}

// AddActivity appends a placeholder row to the activity table.
func (s *Service) AddActivity(ctx context.Context, id string, sectionID int) (sda.SAStructure, error) {
	return s.editRecord(ctx, id, sectionID, (*editor.SectionEditor).AddActivity)
}

// RemoveActivity deletes a row of the activity table. Removing the last row
// leaves the document unchanged.
func (s *Service) RemoveActivity(ctx context.Context, id string, sectionID, index int) (sda.SAStructure, error) {
	return s.editRecord(ctx, id, sectionID, func(ed *editor.SectionEditor) error {
		return ed.RemoveActivity(index)
	})
}

func (s *Service) editRecord(ctx context.Context, id string, sectionID int, fn func(*editor.SectionEditor) error) (sda.SAStructure, error) {
	var rec sda.SAStructure
	err := s.editSection(ctx, id, sectionID, func(ed *editor.SectionEditor) error {
		if !ed.IsLearningSituation() {
			return editor.ErrNotLearningSituation
		}
		if err := fn(ed); err != nil {
			return err
		}
		var err error
		rec, err = ed.Record()
		return err
	})
	return rec, err
}

// editSection runs fn against one expanded section of a fresh editing
// session and stores the reassembled document if anything changed.
func (s *Service) editSection(ctx context.Context, id string, sectionID int, fn func(*editor.SectionEditor) error) error {
	release, err := s.acquire("document:" + id)
	if err != nil {
		return err
	}
	defer release()

	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	c := editor.NewController(doc.Markdown, doc.Language)
	ed, err := c.Editor(sectionID)
	if err != nil {
		return err
	}
	ed.Expand()
	if err := fn(ed); err != nil {
		return err
	}
	if !c.Dirty() {
		return nil
	}
	if _, err := s.store.SaveMarkdown(ctx, id, c.Assemble(), storage.SourceEdit); err != nil {
		return err
	}
	s.log.Debug("section saved", "document_id", id, "section_id", sectionID)
	return nil
}

func structuredEditor(c *editor.Controller, sectionID int) (*editor.SectionEditor, error) {
	ed, err := c.Editor(sectionID)
	if err != nil {
		return nil, err
	}
	if !ed.IsLearningSituation() {
		return nil, editor.ErrNotLearningSituation
	}
	ed.Expand()
	return ed, nil
}
