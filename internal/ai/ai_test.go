package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aulaplan/internal/planning"
	"aulaplan/internal/sda"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContext() planning.TeacherContext {
	tc := planning.DefaultContext()
	tc.Subject = "Física y Química"
	tc.GradeLevel = "3º ESO"
	tc.Department = "Ciencias"
	tc.SelectedNeeds = []string{"Alumnado TDAH"}
	tc.OtherNeeds = "Hipoacusia"
	tc.SAIdeas = []string{"Huerto escolar"}
	return tc
}

func TestBuildDocumentPrompt_Proposal(t *testing.T) {
	pb := &PromptBuilder{}
	p := pb.BuildDocumentPrompt(sampleContext(), planning.DocTypeProposal)

	assert.True(t, strings.HasPrefix(p, "EL DOCUMENTO DEBE ESTAR ESCRITO ÍNTEGRAMENTE EN: Castellano."))
	assert.Contains(t, p, "# PROPUESTA PEDAGÓGICA: Física y Química")
	assert.Contains(t, p, "## 4. Atención a la Diversidad\nMedidas específicas para: Alumnado TDAH, Hipoacusia.")
	assert.Contains(t, p, "basado en 3h/semana")
}

func TestBuildDocumentPrompt_SituationTemplateIsParseable(t *testing.T) {
	pb := &PromptBuilder{}
	tc := sampleContext()
	tc.Language = "Catalán / Valenciano"
	p := pb.BuildDocumentPrompt(tc, planning.DocTypeSituation)

	assert.Contains(t, p, "Genera 2 **SITUACIONES DE APRENDIZAJE** detalladas para Física y Química (3º ESO).")
	assert.Contains(t, p, "- SA 1: Huerto escolar")
	assert.Contains(t, p, "## SITUACIÓN DE APRENDIZAJE: [Título Sugerente]")
	assert.Contains(t, p, sda.ActivityHeader("Catalán / Valenciano"))

	template := p[strings.Index(p, "**Contexto:**"):]
	rec := sda.Extract(template)
	assert.Equal(t, "[Descripción]", rec.ContextPersonal)
	assert.Equal(t, "[Lista de instrumentos]", rec.Instruments)
	require.Len(t, rec.Activities, 1)
	assert.Equal(t, "[Medidas DUA]", rec.Activities[0].InclusionMeasures)
}

func TestBuildDocumentPrompt_FullCourse(t *testing.T) {
	tc := sampleContext()
	tc.GenerateFullCourse = true
	p := (&PromptBuilder{}).BuildDocumentPrompt(tc, planning.DocTypeSituation)
	assert.Contains(t, p, "necesarias para cubrir todo el curso")
	assert.NotContains(t, p, "Genera 2")
}

func TestBuildRefinePrompt(t *testing.T) {
	p := (&PromptBuilder{}).BuildRefinePrompt("# Doc\n\nTexto", "  Añade una SA sobre reciclaje ", "Inglés")
	assert.Contains(t, p, "EN: Inglés.")
	assert.Contains(t, p, "<documento>\n# Doc\n\nTexto\n</documento>")
	assert.Contains(t, p, "Añade una SA sobre reciclaje\n")
	assert.Contains(t, p, "Activity sequencing")
}

func TestCleanMarkdownOutput(t *testing.T) {
	assert.Equal(t, "# Hola", cleanMarkdownOutput("```markdown\n# Hola\n```"))
	assert.Equal(t, "{\"a\":1}", cleanMarkdownOutput("```json\n{\"a\":1}\n```\n"))
	assert.Equal(t, "plain", cleanMarkdownOutput("  plain \n"))
}

func TestParseAnalysis(t *testing.T) {
	a := parseAnalysis(`{"subject":"Física","grade":"3º ESO","competencies":["CE1: Uno",""],"blocks":["Bloque 1: Materia"]}`)
	assert.Equal(t, planning.CurriculumAnalysis{
		Subject: "Física", Grade: "3º ESO",
		Competencies: []string{"CE1: Uno"},
		Blocks:       []string{"Bloque 1: Materia"},
	}, a)
	assert.False(t, a.Incomplete())

	bad := parseAnalysis("not json")
	assert.True(t, bad.Incomplete())
	assert.Empty(t, bad.Subject)
	assert.NotNil(t, bad.Competencies)
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, statusError(http.StatusUnauthorized), ErrUnauthorized)
	assert.ErrorIs(t, statusError(http.StatusForbidden), ErrUnauthorized)
	assert.ErrorIs(t, statusError(http.StatusTooManyRequests), ErrRateLimited)
	assert.ErrorIs(t, statusError(http.StatusBadGateway), ErrUnavailable)
	assert.NoError(t, statusError(http.StatusOK))
	assert.True(t, IsUpstream(classifyGenAIError(errors.New("RESOURCE_EXHAUSTED"))))
	assert.ErrorIs(t, classifyGenAIError(errors.New("boom")), ErrUnavailable)
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(context.Background(), Options{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	g, err := NewGenerator(context.Background(), Options{Provider: "OpenAI", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	_, err = NewGenerator(context.Background(), Options{Provider: "ollama", APIKey: "k"})
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	g := Unavailable(ErrMissingAPIKey)
	_, err := g.AnalyzeCurriculum(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = g.RefineDocument(context.Background(), nil, "# A", "x", "Castellano")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.True(t, IsUpstream(err))
}

func TestNewOpenAI_Endpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", NewOpenAI("k", "m", "", 0).endpoint)
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", NewOpenAI("k", "m", "http://localhost:1234/", 0).endpoint)
	assert.Equal(t, "http://x/v1/chat/completions", NewOpenAI("k", "m", "http://x/v1", 0).endpoint)
}

func TestOpenAI_GenerateDocumentSendsPDFAndSystem(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```markdown\\n# Doc\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("secret", "gpt-test", srv.URL, 0)
	out, err := o.GenerateDocument(context.Background(), pdf, sampleContext(), planning.DocTypeProposal)
	require.NoError(t, err)
	assert.Equal(t, "# Doc", out)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	parts := msgs[1].(map[string]any)["content"].([]any)
	file := parts[0].(map[string]any)["file"].(map[string]any)
	assert.Equal(t, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(pdf), file["file_data"])
	assert.Nil(t, got["response_format"])
}

func TestOpenAI_AnalyzeUsesJSONMode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"subject\":\"Música\"}"}}]}`))
	}))
	defer srv.Close()

	a, err := NewOpenAI("k", "m", srv.URL, 0).AnalyzeCurriculum(context.Background(), []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "Música", a.Subject)
	assert.True(t, a.Incomplete())
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestOpenAI_UpstreamErrors(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:       ErrUnauthorized,
		http.StatusTooManyRequests:    ErrRateLimited,
		http.StatusServiceUnavailable: ErrUnavailable,
	}
	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := NewOpenAI("k", "m", srv.URL, 0).RefineDocument(context.Background(), nil, "# A", "x", "Castellano")
		assert.ErrorIs(t, err, want, status)
		srv.Close()
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	_, err := NewOpenAI("k", "m", srv.URL, 0).RefineDocument(context.Background(), nil, "# A", "x", "Castellano")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
