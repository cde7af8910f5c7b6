package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aulaplan/internal/planning"
)

// Generator is the AI collaborator that reads curriculum PDFs and writes
// planning documents.
type Generator interface {
	AnalyzeCurriculum(ctx context.Context, pdf []byte) (planning.CurriculumAnalysis, error)
	GenerateDocument(ctx context.Context, pdf []byte, tc planning.TeacherContext, docType planning.DocType) (string, error)
	RefineDocument(ctx context.Context, pdf []byte, current, instructions, language string) (string, error)
}

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewGenerator builds the provider named in opts. Gemini is the default.
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", opts.Provider)
	}
}

// Unavailable returns a Generator that fails every call with err. It lets
// the non-AI parts of the application run without credentials.
func Unavailable(err error) Generator {
	return unavailable{err: err}
}

type unavailable struct{ err error }

func (u unavailable) AnalyzeCurriculum(context.Context, []byte) (planning.CurriculumAnalysis, error) {
	return planning.CurriculumAnalysis{}, u.err
}

func (u unavailable) GenerateDocument(context.Context, []byte, planning.TeacherContext, planning.DocType) (string, error) {
	return "", u.err
}

func (u unavailable) RefineDocument(context.Context, []byte, string, string, string) (string, error) {
	return "", u.err
}
