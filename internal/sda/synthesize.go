package sda

import "strings"

// Synthesize renders a record back into the Learning Situation template. The
// activities header follows language; every other label is fixed. A record
// without activities is rendered with one placeholder row.
func Synthesize(r SAStructure, language string) string {
	var b strings.Builder

	writeLabel(&b, LabelContext)
	b.WriteString(FormatRow(ContextColumns[:]...) + "\n")
	b.WriteString(SeparatorRow(len(ContextColumns)) + "\n")
	b.WriteString(FormatRow(r.ContextPersonal, r.ContextEducational, r.ContextSocial, r.ContextProfessional) + "\n")

	writeText(&b, LabelJustification, r.Justification)
	writeText(&b, LabelODS, r.ODSRelation)
	writeText(&b, LabelCompetencies, r.Competencies)
	writeText(&b, LabelKnowledge, r.Knowledge)

	b.WriteString("\n")
	writeLabel(&b, LabelOrganization)
	b.WriteString(ActivityHeader(language) + "\n")
	b.WriteString(SeparatorRow(5) + "\n")
	activities := r.Activities
	if len(activities) == 0 {
		activities = []Activity{NewActivity()}
	}
	for _, a := range activities {
		b.WriteString(FormatRow(a.cells()...) + "\n")
	}

	b.WriteString("\n")
	writeLabel(&b, LabelInstruments)
	b.WriteString(strings.TrimSpace(r.Instruments))
	return b.String()
}

func writeLabel(b *strings.Builder, label string) {
	b.WriteString("**" + label + "**\n")
}

func writeText(b *strings.Builder, label, value string) {
	b.WriteString("\n")
	writeLabel(b, label)
	b.WriteString(strings.TrimSpace(value) + "\n")
}
