package ai

import (
	"encoding/json"
	"strings"

	"aulaplan/internal/planning"
)

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```markdown", "```md", "```json", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			text = strings.TrimSuffix(strings.TrimSpace(text), "```")
			break
		}
	}
	return strings.TrimSpace(text)
}

// parseAnalysis decodes the model's JSON answer. Anything unparsable gives
// an empty analysis, which the wizard reports as incomplete.
func parseAnalysis(raw string) planning.CurriculumAnalysis {
	var parsed struct {
		Subject      string   `json:"subject"`
		Grade        string   `json:"grade"`
		Competencies []string `json:"competencies"`
		Blocks       []string `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownOutput(raw)), &parsed); err != nil {
		return planning.CurriculumAnalysis{Competencies: []string{}, Blocks: []string{}}
	}
	out := planning.CurriculumAnalysis{
		Subject:      strings.TrimSpace(parsed.Subject),
		Grade:        strings.TrimSpace(parsed.Grade),
		Competencies: nonEmpty(parsed.Competencies),
		Blocks:       nonEmpty(parsed.Blocks),
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
