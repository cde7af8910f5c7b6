package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContext(t *testing.T) {
	c := DefaultContext()
	assert.Equal(t, "Castellano", c.Language)
	assert.Equal(t, 3, c.WeeklyHours)
	assert.Equal(t, 2, c.NumberOfSAs)
	assert.Equal(t, []string{"Aprendizaje Basado en Proyectos (ABP)"}, c.MethodologyPreference)
}

func TestValidate(t *testing.T) {
	c := DefaultContext()
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidContext)
	assert.Contains(t, err.Error(), "subject is required")
	assert.Contains(t, err.Error(), "grade level is required")

	c.Subject = "Física"
	c.GradeLevel = "3º ESO"
	c.Language = ""
	require.NoError(t, c.Validate())
	assert.Equal(t, "Castellano", c.Language)

	c.NumberOfSAs = 16
	assert.ErrorIs(t, c.Validate(), ErrInvalidContext)
	c.GenerateFullCourse = true
	assert.NoError(t, c.Validate())
	c.GenerateFullCourse = false
	c.NumberOfSAs = 1
	c.WeeklyHours = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidContext)
}

func TestParseDocType(t *testing.T) {
	d, err := ParseDocType("situacion")
	require.NoError(t, err)
	assert.Equal(t, DocTypeSituation, d)
	assert.Equal(t, "Situaciones de Aprendizaje", d.Title())
	assert.Equal(t, "Propuesta Pedagógica", DocTypeProposal.Title())

	_, err = ParseDocType("memoria")
	assert.ErrorIs(t, err, ErrInvalidContext)
}

func TestContextHelpers(t *testing.T) {
	c := TeacherContext{
		SelectedNeeds:         []string{"Alumnado TDAH", " "},
		OtherNeeds:            "Hipoacusia",
		MethodologyPreference: []string{"Gamificación", "Flipped Classroom"},
		NumberOfSAs:           2,
		SAIdeas:               []string{"Huerto", "", "Radio", "Sobrante"},
	}
	assert.Equal(t, "Alumnado TDAH, Hipoacusia", c.Needs())
	assert.Equal(t, "Gamificación, Flipped Classroom", c.Methodologies())
	assert.Equal(t, []string{"Huerto", "Radio"}, c.Ideas())
}

func TestAnalysis(t *testing.T) {
	a := CurriculumAnalysis{Subject: "Física", Grade: "3º ESO"}
	assert.True(t, a.Incomplete())

	a.Competencies = []string{"CE1: Comprender"}
	a.Blocks = []string{"Bloque 1: Energía"}
	assert.False(t, a.Incomplete())

	c := DefaultContext().Prefill(CurriculumAnalysis{Grade: "4º ESO"})
	assert.Equal(t, "", c.Subject)
	assert.Equal(t, "4º ESO", c.GradeLevel)
}
