package sda

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Block labels of the Learning Situation template, in template order.
const (
	LabelContext       = "Contexto:"
	LabelJustification = "Descripción / Justificación:"
	LabelODS           = "Relación con los retos del s.XXI y los ODS:"
	LabelCompetencies  = "Competencias Específicas y Criterios de Evaluación vinculados:"
	LabelKnowledge     = "Saberes Básicos:"
	LabelOrganization  = "Organización:"
	LabelInstruments   = "Instrumentos de recogida de información:"
)

// Labels lists the block labels in the order they appear in the template.
var Labels = []string{
	LabelContext,
	LabelJustification,
	LabelODS,
	LabelCompetencies,
	LabelKnowledge,
	LabelOrganization,
	LabelInstruments,
}

type blockRule struct {
	start, end string
}

var (
	contextRule       = blockRule{LabelContext, "Descripción"}
	justificationRule = blockRule{LabelJustification, "Relación con"}
	odsRule           = blockRule{LabelODS, "Competencias Específicas"}
	competenciesRule  = blockRule{LabelCompetencies, "Saberes Básicos:"}
	knowledgeRule     = blockRule{LabelKnowledge, "Organización:"}
	activitiesRule    = blockRule{LabelOrganization, "Instrumentos"}
	instrumentsRule   = blockRule{LabelInstruments, ""}
)

func (r blockRule) extract(content string) string {
	return ExtractBlock(content, r.start, r.end, Labels...)
}

// Extract builds the structured record from a Learning Situation section
// body. It never fails: missing blocks become empty strings and a missing or
// empty activities table becomes a single placeholder row.
func Extract(content string) SAStructure {
	content = norm.NFC.String(strings.ReplaceAll(content, "\r\n", "\n"))

	ctx := parseContext(contextRule.extract(content))
	rec := SAStructure{
		ContextPersonal:     cell(ctx, 0),
		ContextEducational:  cell(ctx, 1),
		ContextSocial:       cell(ctx, 2),
		ContextProfessional: cell(ctx, 3),
		Justification:       justificationRule.extract(content),
		ODSRelation:         odsRule.extract(content),
		Competencies:        competenciesRule.extract(content),
		Knowledge:           knowledgeRule.extract(content),
		Activities:          parseActivities(activitiesRule.extract(content)),
		Instruments:         instrumentsRule.extract(content),
	}
	return rec
}

// parseContext returns the cells of the first data row. The first
// non-separator row is the header.
func parseContext(block string) []string {
	var rows []string
	for _, row := range tableRows(block) {
		if !IsSeparatorRow(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 {
		return nil
	}
	return SplitRow(rows[1])
}

// parseActivities maps every data row of the organisation table to an
// Activity by column position. A row is a header when its leading cell names
// the activities column, or when it is the first row and a separator follows
// it.
func parseActivities(block string) []Activity {
	rows := tableRows(block)
	var out []Activity
	first := true
	for i, row := range rows {
		if IsSeparatorRow(row) {
			continue
		}
		cells := SplitRow(row)
		header := isActivityHeader(cells) ||
			first && i+1 < len(rows) && IsSeparatorRow(rows[i+1])
		first = false
		if header {
			continue
		}
		out = append(out, Activity{
			Title:             cell(cells, 0),
			Spaces:            cell(cells, 1),
			Time:              cell(cells, 2),
			Resources:         cell(cells, 3),
			InclusionMeasures: cell(cells, 4),
		})
	}
	if len(out) == 0 {
		out = []Activity{NewActivity()}
	}
	return out
}
