package storage

import (
	"context"
	"errors"
	"time"

	"aulaplan/internal/planning"
)

var ErrNotFound = errors.New("not found")

// RevisionSource records what produced a document revision.
type RevisionSource string

const (
	SourceGenerate RevisionSource = "generate"
	SourceEdit     RevisionSource = "edit"
	SourceRefine   RevisionSource = "refine"
)

// Curriculum is an uploaded official curriculum PDF and its analysis.
type Curriculum struct {
	ID        string                       `json:"id"`
	Filename  string                       `json:"filename"`
	SHA256    string                       `json:"sha256"`
	PDF       []byte                       `json:"-"`
	Analysis  *planning.CurriculumAnalysis `json:"analysis,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
}

// Document is a generated planning document. Markdown is the canonical
// content; everything else is metadata.
type Document struct {
	ID           string                  `json:"id"`
	CurriculumID string                  `json:"curriculum_id"`
	DocType      planning.DocType        `json:"doc_type"`
	Title        string                  `json:"title"`
	Language     string                  `json:"language"`
	Context      planning.TeacherContext `json:"context"`
	Markdown     string                  `json:"markdown"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Revision is one saved version of a document's markdown.
type Revision struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Seq        int            `json:"seq"`
	Source     RevisionSource `json:"source"`
	Markdown   string         `json:"markdown,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Store persists curricula, documents and their revision history.
type Store interface {
	CurriculumStore
	DocumentStore
	Close() error
}

type CurriculumStore interface {
	// SaveCurriculum stores a PDF. Identical bytes return the existing row
	// and created=false.
	SaveCurriculum(ctx context.Context, filename string, pdf []byte) (c *Curriculum, created bool, err error)

	SetAnalysis(ctx context.Context, id string, a planning.CurriculumAnalysis) error

	GetCurriculum(ctx context.Context, id string) (*Curriculum, error)
}

type DocumentStore interface {
	// CreateDocument inserts doc and its first revision. ID and timestamps
	// are assigned when empty.
	CreateDocument(ctx context.Context, doc *Document, source RevisionSource) error

	GetDocument(ctx context.Context, id string) (*Document, error)

	ListDocuments(ctx context.Context) ([]Document, error)

	// SaveMarkdown replaces the document markdown and appends a revision.
	SaveMarkdown(ctx context.Context, id, markdown string, source RevisionSource) (*Revision, error)

	ListRevisions(ctx context.Context, documentID string) ([]Revision, error)

	GetRevision(ctx context.Context, documentID string, seq int) (*Revision, error)
}
