package sda

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TitleMarker identifies Learning Situation sections by their heading.
const TitleMarker = "SITUACIÓN DE APRENDIZAJE"

// PlaceholderActivityTitle is the title given to synthesized and newly added
// activity rows.
const PlaceholderActivityTitle = "Nueva actividad"

var (
	ErrActivityIndex = errors.New("activity index out of range")
	ErrUnknownField  = errors.New("unknown learning situation field")
)

// IsLearningSituation reports whether a section title marks a Learning
// Situation.
func IsLearningSituation(title string) bool {
	return strings.Contains(strings.ToUpper(norm.NFC.String(title)), TitleMarker)
}

// Activity is one row of the organisation table.
type Activity struct {
	Title             string `json:"title"`
	Spaces            string `json:"spaces"`
	Time              string `json:"time"`
	Resources         string `json:"resources"`
	InclusionMeasures string `json:"inclusionMeasures"`
}

// NewActivity returns a row with the placeholder title and empty cells.
func NewActivity() Activity {
	return Activity{Title: PlaceholderActivityTitle}
}

func (a Activity) cells() []string {
	return []string{a.Title, a.Spaces, a.Time, a.Resources, a.InclusionMeasures}
}

// SAStructure is the structured view of a Learning Situation section body.
type SAStructure struct {
	ContextPersonal     string     `json:"contextPersonal"`
	ContextEducational  string     `json:"contextEducational"`
	ContextSocial       string     `json:"contextSocial"`
	ContextProfessional string     `json:"contextProfessional"`
	Justification       string     `json:"justification"`
	ODSRelation         string     `json:"odsRelation"`
	Competencies        string     `json:"competencies"`
	Knowledge           string     `json:"knowledge"`
	Activities          []Activity `json:"activities"`
	Instruments         string     `json:"instruments"`
}

// Clone returns a deep copy.
func (r SAStructure) Clone() SAStructure {
	out := r
	out.Activities = append([]Activity(nil), r.Activities...)
	return out
}

// AddActivity appends a placeholder row.
func (r *SAStructure) AddActivity() {
	r.Activities = append(r.Activities, NewActivity())
}

// RemoveActivity deletes the row at index. Removing the only remaining row
// is a no-op.
func (r *SAStructure) RemoveActivity(index int) error {
	if index < 0 || index >= len(r.Activities) {
		return fmt.Errorf("%w: %d", ErrActivityIndex, index)
	}
	if len(r.Activities) <= 1 {
		return nil
	}
	r.Activities = append(r.Activities[:index:index], r.Activities[index+1:]...)
	return nil
}

// SetActivity replaces the row at index.
func (r *SAStructure) SetActivity(index int, a Activity) error {
	if index < 0 || index >= len(r.Activities) {
		return fmt.Errorf("%w: %d", ErrActivityIndex, index)
	}
	r.Activities[index] = a
	return nil
}

// Field names a free-text or context field of the record. Values match the
// JSON keys.
type Field string

const (
	FieldContextPersonal     Field = "contextPersonal"
	FieldContextEducational  Field = "contextEducational"
	FieldContextSocial       Field = "contextSocial"
	FieldContextProfessional Field = "contextProfessional"
	FieldJustification       Field = "justification"
	FieldODSRelation         Field = "odsRelation"
	FieldCompetencies        Field = "competencies"
	FieldKnowledge           Field = "knowledge"
	FieldInstruments         Field = "instruments"
)

// Fields lists the scalar fields in template order.
var Fields = []Field{
	FieldContextPersonal,
	FieldContextEducational,
	FieldContextSocial,
	FieldContextProfessional,
	FieldJustification,
	FieldODSRelation,
	FieldCompetencies,
	FieldKnowledge,
	FieldInstruments,
}

func (r *SAStructure) ref(f Field) *string {
	switch f {
	case FieldContextPersonal:
		return &r.ContextPersonal
	case FieldContextEducational:
		return &r.ContextEducational
	case FieldContextSocial:
		return &r.ContextSocial
	case FieldContextProfessional:
		return &r.ContextProfessional
	case FieldJustification:
		return &r.Justification
	case FieldODSRelation:
		return &r.ODSRelation
	case FieldCompetencies:
		return &r.Competencies
	case FieldKnowledge:
		return &r.Knowledge
	case FieldInstruments:
		return &r.Instruments
	}
	return nil
}

// Get returns the value of a scalar field.
func (r *SAStructure) Get(f Field) (string, error) {
	p := r.ref(f)
	if p == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return *p, nil
}

// Set assigns a scalar field.
func (r *SAStructure) Set(f Field, value string) error {
	p := r.ref(f)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = value
	return nil
}
