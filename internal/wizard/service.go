package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"aulaplan/internal/ai"
	"aulaplan/internal/document"
	"aulaplan/internal/editor"
	"aulaplan/internal/logger"
	"aulaplan/internal/planning"
	"aulaplan/internal/storage"
)

var (
	// ErrBusy is returned while an AI request or save is running for the
	// same curriculum or document.
	ErrBusy = errors.New("another request is in progress")

	ErrEmptyInstructions = errors.New("refine instructions are empty")
	ErrEmptyUpload       = errors.New("uploaded file is empty")
)

// Service drives the wizard: upload and analyze a curriculum, generate a
// document, then edit and refine it. The stored markdown is the single
// source of truth; section views are recomputed from it on every call.
type Service struct {
	store   storage.Store
	gen     ai.Generator
	log     *logger.Logger
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

type Option func(*Service)

// WithTimeout bounds every AI call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store storage.Store, gen ai.Generator, opts ...Option) *Service {
	s := &Service{
		store:    store,
		gen:      gen,
		log:      logger.Nop(),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadResult is what the context step needs after an upload.
type UploadResult struct {
	Curriculum *storage.Curriculum         `json:"curriculum"`
	Analysis   planning.CurriculumAnalysis `json:"analysis"`
	Incomplete bool                        `json:"incomplete"`
	Context    planning.TeacherContext     `json:"context"`
	Reused     bool                        `json:"reused"`
}

// Upload stores the PDF and analyzes it. A previously analyzed identical
// upload reuses the stored analysis.
func (s *Service) Upload(ctx context.Context, filename string, pdf []byte) (*UploadResult, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyUpload
	}
	c, created, err := s.store.SaveCurriculum(ctx, filename, pdf)
	if err != nil {
		return nil, fmt.Errorf("store curriculum: %w", err)
	}
	s.log.Info("curriculum stored", "curriculum_id", c.ID, "filename", filename, "bytes", len(pdf), "created", created)

	if !created && c.Analysis != nil {
		return newUploadResult(c, *c.Analysis, true), nil
	}
	return s.Analyze(ctx, c.ID)
}

// Analyze runs (or re-runs) curriculum analysis.
func (s *Service) Analyze(ctx context.Context, curriculumID string) (*UploadResult, error) {
	c, err := s.store.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire("curriculum:" + c.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	actx, cancel := s.aiContext(ctx)
	defer cancel()
	analysis, err := s.gen.AnalyzeCurriculum(actx, c.PDF)
	if err != nil {
		s.log.Warn("curriculum analysis failed", "curriculum_id", c.ID, "error", err)
		return nil, fmt.Errorf("analyze curriculum: %w", err)
	}
	if err := s.store.SetAnalysis(ctx, c.ID, analysis); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	c.Analysis = &analysis
	s.log.Info("curriculum analyzed", "curriculum_id", c.ID, "incomplete", analysis.Incomplete(),
		"competencies", len(analysis.Competencies), "blocks", len(analysis.Blocks))
	return newUploadResult(c, analysis, false), nil
}

func newUploadResult(c *storage.Curriculum, a planning.CurriculumAnalysis, reused bool) *UploadResult {
	return &UploadResult{
		Curriculum: c,
		Analysis:   a,
		Incomplete: a.Incomplete(),
		Context:    planning.DefaultContext().Prefill(a),
		Reused:     reused,
	}
}

// Curriculum returns a stored curriculum.
func (s *Service) Curriculum(ctx context.Context, id string) (*storage.Curriculum, error) {
	return s.store.GetCurriculum(ctx, id)
}

// Generate validates the teacher context, asks the AI for the document and
// stores it with its first revision.
func (s *Service) Generate(ctx context.Context, curriculumID string, tc planning.TeacherContext, docType planning.DocType) (*storage.Document, error) {
	if _, err := planning.ParseDocType(string(docType)); err != nil {
		return nil, err
	}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	c, err := s.store.GetCurriculum(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire("curriculum:" + c.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	actx, cancel := s.aiContext(ctx)
	defer cancel()
	markdown, err := s.gen.GenerateDocument(actx, c.PDF, tc, docType)
	if err != nil {
		s.log.Warn("document generation failed", "curriculum_id", c.ID, "doc_type", docType, "error", err)
		return nil, fmt.Errorf("generate document: %w", err)
	}

	doc := &storage.Document{
		CurriculumID: c.ID,
		DocType:      docType,
		Title:        docType.Title(),
		Language:     tc.Language,
		Context:      tc,
		Markdown:     markdown,
	}
	if err := s.store.CreateDocument(ctx, doc, storage.SourceGenerate); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	s.log.Info("document generated", "document_id", doc.ID, "doc_type", docType,
		"sections", len(document.Split(markdown)), "duration_ms", time.Since(started).Milliseconds())
	return doc, nil
}

// Document returns a stored document.
func (s *Service) Document(ctx context.Context, id string) (*storage.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// Documents lists stored documents, most recently updated first.
func (s *Service) Documents(ctx context.Context) ([]storage.Document, error) {
	return s.store.ListDocuments(ctx)
}

// SaveMarkdown replaces the whole document, as the raw editor of the
// browser does. Edits are rejected with ErrBusy while a refinement of the
// same document is running.
func (s *Service) SaveMarkdown(ctx context.Context, id, markdown string) (*storage.Document, error) {
	release, err := s.acquire("document:" + id)
	if err != nil {
		return nil, err
	}
	defer release()
	if _, err := s.store.SaveMarkdown(ctx, id, markdown, storage.SourceEdit); err != nil {
		return nil, err
	}
	return s.store.GetDocument(ctx, id)
}

// Refine sends the current markdown and the original PDF back to the AI
// with the teacher's instructions. On any failure the stored document is
// left untouched.
func (s *Service) Refine(ctx context.Context, id, instructions string) (*storage.Document, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, ErrEmptyInstructions
	}
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire("document:" + doc.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	var pdf []byte
	if doc.CurriculumID != "" {
		c, err := s.store.GetCurriculum(ctx, doc.CurriculumID)
		if err != nil {
			return nil, err
		}
		pdf = c.PDF
	}

	actx, cancel := s.aiContext(ctx)
	defer cancel()
	markdown, err := s.gen.RefineDocument(actx, pdf, doc.Markdown, instructions, doc.Language)
	if err != nil {
		s.log.Warn("document refinement failed", "document_id", doc.ID, "error", err)
		return nil, fmt.Errorf("refine document: %w", err)
	}
	if _, err := s.store.SaveMarkdown(ctx, doc.ID, markdown, storage.SourceRefine); err != nil {
		return nil, fmt.Errorf("store refined document: %w", err)
	}
	s.log.Info("document refined", "document_id", doc.ID)
	return s.store.GetDocument(ctx, doc.ID)
}

// OpenEditor loads a document into a fresh editing session.
func (s *Service) OpenEditor(ctx context.Context, id string) (*editor.Controller, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return editor.NewController(doc.Markdown, doc.Language), nil
}

// SaveAssembled stores markdown assembled by an editing session. Nothing is
// written, and the revision is nil, when it matches the stored markdown.
func (s *Service) SaveAssembled(ctx context.Context, id, markdown string) (*storage.Revision, error) {
	release, err := s.acquire("document:" + id)
	if err != nil {
		return nil, err
	}
	defer release()
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if markdown == doc.Markdown {
		return nil, nil
	}
	return s.store.SaveMarkdown(ctx, id, markdown, storage.SourceEdit)
}

// Revisions lists the history of a document.
func (s *Service) Revisions(ctx context.Context, id string) ([]storage.Revision, error) {
	if _, err := s.store.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListRevisions(ctx, id)
}

// Revision returns one revision with its markdown.
func (s *Service) Revision(ctx context.Context, id string, seq int) (*storage.Revision, error) {
	return s.store.GetRevision(ctx, id, seq)
}

func (s *Service) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// acquire marks key as busy until the returned func is called.
func (s *Service) acquire(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[key]; ok {
		return nil, ErrBusy
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}
