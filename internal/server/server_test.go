package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"aulaplan/internal/ai"
	"aulaplan/internal/planning"
	"aulaplan/internal/sda"
	"aulaplan/internal/storage"
	"aulaplan/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generated = "Portada\n\n# SITUACIONES DE APRENDIZAJE: Física\n\nIntro\n\n## SITUACIÓN DE APRENDIZAJE: La energía\n\n" +
	"**Contexto:**\n| Personal | Educativo | Social | Profesional |\n| :--- | :--- | :--- | :--- |\n| P1 | E1 | S1 | Pr1 |\n\n" +
	"**Descripción / Justificación:**\nTexto\n\n" +
	"**Organización:**\n| H1 | H2 | H3 | H4 | H5 |\n| :--- | :--- | :--- | :--- | :--- |\n| A1 | B1 | C1 | D1 | E1 |\n\n" +
	"**Instrumentos de recogida de información:**\nInst1\n\n## Anexo\n\nNotas"

type fakeGenerator struct {
	markdown  string
	refined   string
	refineErr error
}

func (f *fakeGenerator) AnalyzeCurriculum(ctx context.Context, pdf []byte) (planning.CurriculumAnalysis, error) {
	return planning.CurriculumAnalysis{Subject: "Física", Grade: "3º ESO", Competencies: []string{"CE1: Comprender"}, Blocks: []string{"Bloque 1: Energía"}}, nil
}

func (f *fakeGenerator) GenerateDocument(ctx context.Context, pdf []byte, tc planning.TeacherContext, docType planning.DocType) (string, error) {
	return f.markdown, nil
}

func (f *fakeGenerator) RefineDocument(ctx context.Context, pdf []byte, current, instructions, language string) (string, error) {
	if f.refineErr != nil {
		return "", f.refineErr
	}
	return f.refined, nil
}

func newTestRouter(t *testing.T, gen *fakeGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(RouterConfig{Service: wizard.NewService(store, gen), MaxUploadBytes: 1 << 20})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, r http.Handler, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/curricula", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[ErrorEnvelope](t, rec).Error.Code
}

// createDocument uploads a curriculum and generates a learning situations
// document from it.
func createDocument(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := upload(t, r, "curriculo.pdf", []byte("%PDF-1.4 contenido"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decode[wizard.UploadResult](t, rec)
	assert.Equal(t, "Física", up.Context.Subject)
	assert.False(t, up.Incomplete)

	rec = do(t, r, http.MethodPost, "/api/documents", map[string]any{
		"curriculum_id": up.Curriculum.ID,
		"doc_type":      "SITUACION",
		"context":       map[string]any{"subject": "Física", "gradeLevel": "3º ESO"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[storage.Document](t, rec)
	assert.Equal(t, "Situaciones de Aprendizaje", doc.Title)
	assert.Equal(t, "Castellano", doc.Language)
	assert.Equal(t, 3, doc.Context.WeeklyHours)
	return doc.ID
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{})
	rec := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{})
	rec := upload(t, r, "notas.txt", []byte("hola"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_pdf", errorCode(t, rec))

	rec = upload(t, r, "vacio.pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))
}

func TestCreateDocument_Validation(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{markdown: generated})
	rec := upload(t, r, "curriculo.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusCreated, rec.Code)
	up := decode[wizard.UploadResult](t, rec)

	rec = do(t, r, http.MethodPost, "/api/documents", map[string]any{
		"curriculum_id": up.Curriculum.ID,
		"doc_type":      "PROPUESTA",
		"context":       map[string]any{"subject": "Física"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_context", errorCode(t, rec))

	rec = do(t, r, http.MethodPost, "/api/documents", map[string]any{"curriculum_id": up.Curriculum.ID, "doc_type": "OTRO"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/documents", map[string]any{"doc_type": "SITUACION"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))
}

func TestDocumentNotFound(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{})
	rec := do(t, r, http.MethodGet, "/api/documents/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = do(t, r, http.MethodPut, "/api/documents/missing", map[string]any{"markdown": "# A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionsAndStructuredEditing(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{markdown: generated})
	id := createDocument(t, r)
	base := "/api/documents/" + id

	rec := do(t, r, http.MethodGet, base+"/sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Sections []wizard.SectionView `json:"sections"`
	}](t, rec)
	require.Len(t, list.Sections, 4)
	assert.True(t, list.Sections[2].LearningSituation)
	assert.False(t, list.Sections[3].LearningSituation)

	rec = do(t, r, http.MethodGet, base+"/sections/2/sda", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[sda.SAStructure](t, rec)
	assert.Equal(t, "P1", got.ContextPersonal)
	require.Len(t, got.Activities, 1)

	rec = do(t, r, http.MethodGet, base+"/sections/3/sda", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not_learning_situation", errorCode(t, rec))

	rec = do(t, r, http.MethodGet, base+"/sections/9/sda", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/sections/x/sda", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_sid", errorCode(t, rec))

	rec = do(t, r, http.MethodPost, base+"/sections/2/sda/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[sda.SAStructure](t, rec).Activities, 2)

	rec = do(t, r, http.MethodDelete, base+"/sections/2/sda/activities/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[sda.SAStructure](t, rec).Activities, 1)

	rec = do(t, r, http.MethodDelete, base+"/sections/2/sda/activities/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A1", decode[sda.SAStructure](t, rec).Activities[0].Title)

	rec = do(t, r, http.MethodDelete, base+"/sections/2/sda/activities/7", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_activity_index", errorCode(t, rec))

	got.Instruments = "Rúbrica"
	rec = do(t, r, http.MethodPut, base+"/sections/2/sda", got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rúbrica", decode[sda.SAStructure](t, rec).Instruments)

	rec = do(t, r, http.MethodPut, base+"/sections/3", map[string]any{"title": "Anexo I"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Anexo I", decode[wizard.SectionView](t, rec).Title)

	rec = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[storage.Document](t, rec)
	assert.Contains(t, doc.Markdown, "Rúbrica")
	assert.True(t, strings.HasSuffix(doc.Markdown, "## Anexo I\n\nNotas"))

	rec = do(t, r, http.MethodGet, base+"/revisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	revs := decode[struct {
		Revisions []storage.Revision `json:"revisions"`
	}](t, rec)
	// generate, add, remove, record update, rename
	assert.Len(t, revs.Revisions, 5)
}

func TestRefine_UpstreamErrors(t *testing.T) {
	gen := &fakeGenerator{markdown: generated, refined: "# Nuevo"}
	r := newTestRouter(t, gen)
	id := createDocument(t, r)
	base := "/api/documents/" + id

	rec := do(t, r, http.MethodPost, base+"/refine", map[string]any{"instructions": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	gen.refineErr = fmt.Errorf("openai: %w", ai.ErrRateLimited)
	rec = do(t, r, http.MethodPost, base+"/refine", map[string]any{"instructions": "Más breve"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "upstream_rate_limited", errorCode(t, rec))

	gen.refineErr = fmt.Errorf("gemini: %w", ai.ErrUnauthorized)
	rec = do(t, r, http.MethodPost, base+"/refine", map[string]any{"instructions": "Más breve"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_unauthorized", errorCode(t, rec))

	rec = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, generated, decode[storage.Document](t, rec).Markdown)

	gen.refineErr = nil
	rec = do(t, r, http.MethodPost, base+"/refine", map[string]any{"instructions": "Más breve"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Nuevo", decode[storage.Document](t, rec).Markdown)

	rec = do(t, r, http.MethodGet, base+"/diff", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[wizard.RevisionDiff](t, rec)
	assert.Equal(t, 1, d.From)
	assert.Equal(t, 2, d.To)
	assert.Equal(t, 1, d.Stats.Added)

	rec = do(t, r, http.MethodGet, base+"/revisions/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.SourceRefine, decode[storage.Revision](t, rec).Source)
}

func TestExport(t *testing.T) {
	r := newTestRouter(t, &fakeGenerator{markdown: generated})
	id := createDocument(t, r)

	rec := do(t, r, http.MethodGet, "/api/documents/"+id+"/export?format=md", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generated, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Situaciones_de_Aprendizaje.md")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))

	rec = do(t, r, http.MethodGet, "/api/documents/"+id+"/export?format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2>SITUACIÓN DE APRENDIZAJE: La energía</h2>")

	rec = do(t, r, http.MethodGet, "/api/documents/"+id+"/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_format", errorCode(t, rec))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("x: %w", storage.ErrNotFound), http.StatusNotFound, "not_found"},
		{wizard.ErrBusy, http.StatusConflict, "busy"},
		{ai.ErrMissingAPIKey, http.StatusServiceUnavailable, "ai_not_configured"},
		{ai.ErrEmptyResponse, http.StatusBadGateway, "upstream_error"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "upstream_timeout"},
		{errors.Join(ai.ErrUnavailable, context.DeadlineExceeded), http.StatusGatewayTimeout, "upstream_timeout"},
		{fmt.Errorf("disk full"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
