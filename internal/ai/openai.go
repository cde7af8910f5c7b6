package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aulaplan/internal/planning"
)

const defaultOpenAITimeout = 180 * time.Second

// OpenAI implements Generator against an OpenAI-compatible chat completions
// endpoint. The PDF travels as a base64 file content part.
type OpenAI struct {
	client        *http.Client
	apiKey        string
	model         string
	endpoint      string
	promptBuilder *PromptBuilder
}

type openAIChatRequest struct {
	Model          string              `json:"model"`
	Messages       []openAIChatMessage `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat       `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

// openAIChatMessage content is a plain string or a list of content parts.
type openAIChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	File *openAIFilePart `json:"file,omitempty"`
}

type openAIFilePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/chat/completions"
			} else {
				endpoint += "/v1/chat/completions"
			}
		}
	}
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}
	return &OpenAI{
		client:        &http.Client{Timeout: timeout},
		apiKey:        apiKey,
		model:         model,
		endpoint:      endpoint,
		promptBuilder: &PromptBuilder{},
	}
}

func (o *OpenAI) AnalyzeCurriculum(ctx context.Context, pdf []byte) (planning.CurriculumAnalysis, error) {
	text, err := o.generate(ctx, pdf, "", o.promptBuilder.BuildAnalysisPrompt(), true)
	if err != nil {
		return planning.CurriculumAnalysis{}, err
	}
	return parseAnalysis(text), nil
}

func (o *OpenAI) GenerateDocument(ctx context.Context, pdf []byte, tc planning.TeacherContext, docType planning.DocType) (string, error) {
	text, err := o.generate(ctx, pdf, SystemInstruction, o.promptBuilder.BuildDocumentPrompt(tc, docType), false)
	if err != nil {
		return "", err
	}
	return cleanMarkdownOutput(text), nil
}

func (o *OpenAI) RefineDocument(ctx context.Context, pdf []byte, current, instructions, language string) (string, error) {
	text, err := o.generate(ctx, pdf, SystemInstruction, o.promptBuilder.BuildRefinePrompt(current, instructions, language), false)
	if err != nil {
		return "", err
	}
	return cleanMarkdownOutput(text), nil
}

func (o *OpenAI) generate(ctx context.Context, pdf []byte, system, prompt string, jsonMode bool) (string, error) {
	if strings.TrimSpace(o.apiKey) == "" {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(o.model) == "" {
		return "", fmt.Errorf("openai model is required")
	}

	parts := make([]openAIContentPart, 0, 2)
	if len(pdf) > 0 {
		parts = append(parts, openAIContentPart{
			Type: "file",
			File: &openAIFilePart{
				Filename: "curriculum.pdf",
				FileData: "data:" + pdfMIMEType + ";base64," + base64.StdEncoding.EncodeToString(pdf),
			},
		})
	}
	parts = append(parts, openAIContentPart{Type: "text", Text: prompt})

	reqBody := openAIChatRequest{Model: o.model, Temperature: 0.4}
	if system != "" {
		reqBody.Messages = append(reqBody.Messages, openAIChatMessage{Role: "system", Content: system})
	}
	reqBody.Messages = append(reqBody.Messages, openAIChatMessage{Role: "user", Content: parts})
	if jsonMode {
		reqBody.ResponseFormat = &openAIFormat{Type: "json_object"}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if sentinel := statusError(resp.StatusCode); sentinel != nil {
		return "", fmt.Errorf("%w: openai chat request failed (%d): %s", sentinel, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
