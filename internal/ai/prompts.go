package ai

import (
	"fmt"
	"strings"

	"aulaplan/internal/planning"
	"aulaplan/internal/sda"
)

// SystemInstruction frames every generation request.
const SystemInstruction = `Eres un experto pedagogo y jefe de departamento con amplia experiencia en normativa educativa (LOMLOE) y diseño curricular.
Tu objetivo es redactar documentos oficiales precisos basándote en el currículum oficial (PDF) y el contexto proporcionado.
Debes seguir estrictamente la estructura de Markdown solicitada para que el sistema pueda procesar los campos.
Usa un lenguaje técnico, inclusivo y profesional.
IMPORTANTE: Debes escribir el documento ÚNICA Y EXCLUSIVAMENTE en el idioma solicitado por el usuario.`

// PromptBuilder constructs the user prompts sent alongside the curriculum PDF.
type PromptBuilder struct{}

func (pb *PromptBuilder) BuildAnalysisPrompt() string {
	var sb strings.Builder
	sb.WriteString("Analiza este PDF del currículum oficial.\n")
	sb.WriteString("Extrae la siguiente información estructurada en JSON:\n")
	sb.WriteString("1. \"subject\": Nombre probable de la Asignatura.\n")
	sb.WriteString("2. \"grade\": Curso/Nivel académico.\n")
	sb.WriteString("3. \"competencies\": Una lista (array de strings) de las Competencias Específicas.\n")
	sb.WriteString("   IMPORTANTE: Cada string DEBE empezar con su código (ej: \"CE1: [Título]\", \"CE2: [Título]\"). Si el PDF no tiene códigos, invéntalos correlativamente.\n")
	sb.WriteString("4. \"blocks\": Una lista (array de strings) de los Bloques de Saberes Básicos.\n")
	sb.WriteString("   IMPORTANTE: Cada string DEBE empezar con \"Bloque X: [Nombre del bloque]\".\n\n")
	sb.WriteString("Devuelve SOLO el JSON raw.")
	return sb.String()
}

func (pb *PromptBuilder) BuildDocumentPrompt(tc planning.TeacherContext, docType planning.DocType) string {
	var sb strings.Builder
	sb.WriteString(languageInstruction(tc.Language))
	sb.WriteString("\n\n")
	if docType == planning.DocTypeProposal {
		pb.writeProposal(&sb, tc)
	} else {
		pb.writeSituations(&sb, tc)
	}
	return sb.String()
}

func (pb *PromptBuilder) writeProposal(sb *strings.Builder, tc planning.TeacherContext) {
	sb.WriteString("Genera una **PROPUESTA PEDAGÓGICA DE DEPARTAMENTO**.\n")
	if tc.Department != "" {
		fmt.Fprintf(sb, "Departamento: %s.\n", tc.Department)
	}
	sb.WriteString("Usa exactamente estos encabezados de nivel 2:\n\n")
	fmt.Fprintf(sb, "# PROPUESTA PEDAGÓGICA: %s\n", tc.Subject)
	sb.WriteString("## 1. Concreción Curricular\n")
	fmt.Fprintf(sb, "Detalla competencias específicas y criterios del PDF vinculados a %s.\n", tc.GradeLevel)
	sb.WriteString("## 2. Metodología y Estrategias\n")
	fmt.Fprintf(sb, "Basadas en: %s.\n", tc.Methodologies())
	sb.WriteString("## 3. Evaluación\n")
	fmt.Fprintf(sb, "Instrumentos, criterios de calificación y temporalización (basado en %dh/semana).\n", tc.WeeklyHours)
	sb.WriteString("## 4. Atención a la Diversidad\n")
	fmt.Fprintf(sb, "Medidas específicas para: %s.\n", tc.Needs())
}

func (pb *PromptBuilder) writeSituations(sb *strings.Builder, tc planning.TeacherContext) {
	if tc.GenerateFullCourse {
		fmt.Fprintf(sb, "Genera las **SITUACIONES DE APRENDIZAJE** necesarias para cubrir todo el curso de %s (%s), con una temporalización basada en %dh/semana.\n",
			tc.Subject, tc.GradeLevel, tc.WeeklyHours)
	} else {
		fmt.Fprintf(sb, "Genera %d **SITUACIONES DE APRENDIZAJE** detalladas para %s (%s).\n", tc.NumberOfSAs, tc.Subject, tc.GradeLevel)
	}
	if m := tc.Methodologies(); m != "" {
		fmt.Fprintf(sb, "Metodologías: %s.\n", m)
	}
	if n := tc.Needs(); n != "" {
		fmt.Fprintf(sb, "Atención a la diversidad: %s.\n", n)
	}
	if ideas := tc.Ideas(); len(ideas) > 0 {
		sb.WriteString("Ideas propuestas por el docente:\n")
		for i, idea := range ideas {
			fmt.Fprintf(sb, "- SA %d: %s\n", i+1, idea)
		}
	}
	sb.WriteString("\nPARA CADA SITUACIÓN DE APRENDIZAJE, debes usar EXACTAMENTE esta estructura y etiquetas:\n\n")
	sb.WriteString(situationTemplate(tc.Language))
	sb.WriteString("\n")
}

// BuildRefinePrompt asks for a revised version of a previously generated
// document, keeping its structure parseable.
func (pb *PromptBuilder) BuildRefinePrompt(current, instructions, language string) string {
	var sb strings.Builder
	sb.WriteString(languageInstruction(language))
	sb.WriteString("\n\nEste es el documento generado previamente:\n\n")
	sb.WriteString("<documento>\n")
	sb.WriteString(current)
	sb.WriteString("\n</documento>\n\n")
	sb.WriteString("Revisa el documento siguiendo estas indicaciones del docente:\n")
	sb.WriteString(strings.TrimSpace(instructions))
	sb.WriteString("\n\nDevuelve el documento COMPLETO en Markdown. Conserva los encabezados y, en cada SITUACIÓN DE APRENDIZAJE, las etiquetas en negrita y las tablas de esta estructura:\n\n")
	sb.WriteString(situationTemplate(language))
	sb.WriteString("\n")
	return sb.String()
}

func languageInstruction(language string) string {
	if strings.TrimSpace(language) == "" {
		language = planning.Languages[0]
	}
	return fmt.Sprintf("EL DOCUMENTO DEBE ESTAR ESCRITO ÍNTEGRAMENTE EN: %s.", language)
}

// situationTemplate renders the Learning Situation skeleton with bracketed
// placeholders, so the model sees exactly what the extractor parses.
func situationTemplate(language string) string {
	skeleton := sda.SAStructure{
		ContextPersonal:     "[Descripción]",
		ContextEducational:  "[Descripción]",
		ContextSocial:       "[Descripción]",
		ContextProfessional: "[Descripción]",
		Justification:       "[Escribe aquí la justificación pedagógica]",
		ODSRelation:         "[Escribe aquí la vinculación con ODS]",
		Competencies:        "[Cita las competencias específicas del PDF]",
		Knowledge:           "[Lista los saberes del PDF involucrados]",
		Activities: []sda.Activity{{
			Title:             "[Inicio, desarrollo y cierre]",
			Spaces:            "[Espacios]",
			Time:              "[Sesiones/Horas]",
			Resources:         "[Materiales]",
			InclusionMeasures: "[Medidas DUA]",
		}},
		Instruments: "[Lista de instrumentos]",
	}
	return "## " + sda.TitleMarker + ": [Título Sugerente]\n\n" + sda.Synthesize(skeleton, language)
}
