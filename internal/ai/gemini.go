package ai

import (
	"context"
	"fmt"
	"strings"

	"aulaplan/internal/planning"

	"google.golang.org/genai"
)

const pdfMIMEType = "application/pdf"

// Gemini implements Generator with the Gemini API, sending the curriculum
// PDF as inline bytes next to the prompt.
type Gemini struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (g *Gemini) AnalyzeCurriculum(ctx context.Context, pdf []byte) (planning.CurriculumAnalysis, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	text, err := g.generate(ctx, pdf, g.promptBuilder.BuildAnalysisPrompt(), cfg)
	if err != nil {
		return planning.CurriculumAnalysis{}, err
	}
	return parseAnalysis(text), nil
}

func (g *Gemini) GenerateDocument(ctx context.Context, pdf []byte, tc planning.TeacherContext, docType planning.DocType) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	}
	text, err := g.generate(ctx, pdf, g.promptBuilder.BuildDocumentPrompt(tc, docType), cfg)
	if err != nil {
		return "", err
	}
	return cleanMarkdownOutput(text), nil
}

func (g *Gemini) RefineDocument(ctx context.Context, pdf []byte, current, instructions, language string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	}
	text, err := g.generate(ctx, pdf, g.promptBuilder.BuildRefinePrompt(current, instructions, language), cfg)
	if err != nil {
		return "", err
	}
	return cleanMarkdownOutput(text), nil
}

func (g *Gemini) generate(ctx context.Context, pdf []byte, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(pdf) > 0 {
		parts = append(parts, genai.NewPartFromBytes(pdf, pdfMIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", classifyGenAIError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
