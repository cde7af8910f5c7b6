package wizard

import (
	"context"
	"fmt"

	"aulaplan/internal/export"
)

// Download is a rendered document ready to be served or written to disk.
type Download struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Export renders the stored markdown of a document.
func (s *Service) Export(ctx context.Context, id string, f export.Format) (*Download, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := export.Render(doc.Title, doc.Markdown, f)
	if err != nil {
		return nil, err
	}
	return &Download{
		FileName:    export.FileName(doc.Title, f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// RevisionDiff is the line diff between two stored revisions.
type RevisionDiff struct {
	From  int               `json:"from"`
	To    int               `json:"to"`
	Stats export.DiffStats  `json:"stats"`
	Lines []export.DiffLine `json:"lines"`
}

// Diff compares revisions from and to. A zero to means the latest revision
// and a zero from means the one before to.
func (s *Service) Diff(ctx context.Context, id string, from, to int) (*RevisionDiff, error) {
	if to <= 0 {
		revs, err := s.Revisions(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(revs) == 0 {
			return nil, fmt.Errorf("document %s has no revisions", id)
		}
		to = revs[len(revs)-1].Seq
	}
	if from <= 0 {
		from = max(to-1, 1)
	}
	before, err := s.store.GetRevision(ctx, id, from)
	if err != nil {
		return nil, err
	}
	after, err := s.store.GetRevision(ctx, id, to)
	if err != nil {
		return nil, err
	}
	lines := export.RevisionDiff(before.Markdown, after.Markdown)
	return &RevisionDiff{From: from, To: to, Stats: export.Stats(lines), Lines: lines}, nil
}
