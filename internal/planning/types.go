package planning

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidContext is returned when the teacher context cannot drive a
// generation request.
var ErrInvalidContext = errors.New("invalid teacher context")

const (
	MinWeeklyHours = 1
	MaxWeeklyHours = 30
	MinSAs         = 1
	MaxSAs         = 15
)

// DocType selects which official document is generated.
type DocType string

const (
	DocTypeProposal  DocType = "PROPUESTA"
	DocTypeSituation DocType = "SITUACION"
)

// ParseDocType accepts the canonical values case-insensitively.
func ParseDocType(s string) (DocType, error) {
	switch DocType(strings.ToUpper(strings.TrimSpace(s))) {
	case DocTypeProposal:
		return DocTypeProposal, nil
	case DocTypeSituation:
		return DocTypeSituation, nil
	}
	return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidContext, s)
}

// Title is the human label used for document titles and download names.
func (d DocType) Title() string {
	if d == DocTypeProposal {
		return "Propuesta Pedagógica"
	}
	return "Situaciones de Aprendizaje"
}

// TeacherContext is what the teacher fills in before generation.
type TeacherContext struct {
	Subject               string   `json:"subject"`
	Department            string   `json:"department"`
	GradeLevel            string   `json:"gradeLevel"`
	WeeklyHours           int      `json:"weeklyHours"`
	Language              string   `json:"language"`
	SelectedNeeds         []string `json:"selectedNeeds"`
	OtherNeeds            string   `json:"otherNeeds"`
	MethodologyPreference []string `json:"methodologyPreference"`
	GenerateFullCourse    bool     `json:"generateFullCourse"`
	NumberOfSAs           int      `json:"numberOfSAs"`
	SAIdeas               []string `json:"saIdeas"`
}

// DefaultContext returns the values the wizard starts from.
func DefaultContext() TeacherContext {
	return TeacherContext{
		WeeklyHours:           3,
		Language:              Languages[0],
		SelectedNeeds:         []string{},
		MethodologyPreference: []string{Methodologies[0]},
		NumberOfSAs:           2,
	}
}

// Validate checks the fields generation depends on. The SA count is ignored
// when the whole course is requested. An empty language is filled with the
// default.
func (c *TeacherContext) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Subject) == "" {
		problems = append(problems, "subject is required")
	}
	if strings.TrimSpace(c.GradeLevel) == "" {
		problems = append(problems, "grade level is required")
	}
	if c.WeeklyHours < MinWeeklyHours || c.WeeklyHours > MaxWeeklyHours {
		problems = append(problems, fmt.Sprintf("weekly hours must be between %d and %d", MinWeeklyHours, MaxWeeklyHours))
	}
	if !c.GenerateFullCourse && (c.NumberOfSAs < MinSAs || c.NumberOfSAs > MaxSAs) {
		problems = append(problems, fmt.Sprintf("number of learning situations must be between %d and %d", MinSAs, MaxSAs))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContext, strings.Join(problems, "; "))
	}
	if strings.TrimSpace(c.Language) == "" {
		c.Language = Languages[0]
	}
	return nil
}

// Needs joins the selected and free-text needs for prompts.
func (c TeacherContext) Needs() string {
	var parts []string
	for _, n := range append(append([]string(nil), c.SelectedNeeds...), c.OtherNeeds) {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, ", ")
}

// Methodologies joins the methodology preferences for prompts.
func (c TeacherContext) Methodologies() string {
	return strings.Join(c.MethodologyPreference, ", ")
}

// Ideas returns the non-empty SA ideas, at most NumberOfSAs of them.
func (c TeacherContext) Ideas() []string {
	var out []string
	for _, idea := range c.SAIdeas {
		if idea = strings.TrimSpace(idea); idea != "" {
			out = append(out, idea)
		}
	}
	if c.NumberOfSAs > 0 && len(out) > c.NumberOfSAs {
		out = out[:c.NumberOfSAs]
	}
	return out
}

// CurriculumAnalysis is the structure extracted from an official
// curriculum PDF.
type CurriculumAnalysis struct {
	Subject      string   `json:"subject"`
	Grade        string   `json:"grade"`
	Competencies []string `json:"competencies"`
	Blocks       []string `json:"blocks"`
}

// Incomplete reports whether the analysis missed any field, in which case
// the teacher is warned before continuing.
func (a CurriculumAnalysis) Incomplete() bool {
	return a.Subject == "" || a.Grade == "" || len(a.Competencies) == 0 || len(a.Blocks) == 0
}

// Prefill copies subject and grade from the analysis when present.
func (c TeacherContext) Prefill(a CurriculumAnalysis) TeacherContext {
	if a.Subject != "" {
		c.Subject = a.Subject
	}
	if a.Grade != "" {
		c.GradeLevel = a.Grade
	}
	return c
}
