package sda

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Language selects the localized header of the activities table.
type Language int

const (
	Spanish Language = iota
	Catalan
	English
)

func (l Language) String() string {
	switch l {
	case Catalan:
		return "Catalán / Valenciano"
	case English:
		return "Inglés"
	default:
		return "Castellano"
	}
}

// ParseLanguage maps the free-text language of the teacher context to a
// Language. Anything unrecognised is Spanish.
func ParseLanguage(s string) Language {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(l, "catal"), strings.Contains(l, "valenci"):
		return Catalan
	case strings.Contains(l, "ingl"), strings.Contains(l, "english"), strings.Contains(l, "angl"):
		return English
	default:
		return Spanish
	}
}

var activityColumns = map[Language][5]string{
	Spanish: {
		"Secuenciación de actividades",
		"Organización de los espacios",
		"Distribución del tiempo",
		"Recursos y materiales",
		"Medidas de respuesta educativa para la inclusión",
	},
	Catalan: {
		"Seqüenciació d'activitats",
		"Organització dels espais",
		"Distribució del temps",
		"Recursos i materials",
		"Mesures de resposta educativa per a la inclusió",
	},
	English: {
		"Activity sequencing",
		"Organisation of spaces",
		"Time distribution",
		"Resources and materials",
		"Educational inclusion measures",
	},
}

// ActivityColumns returns the five column labels for lang.
func ActivityColumns(lang Language) [5]string {
	cols, ok := activityColumns[lang]
	if !ok {
		return activityColumns[Spanish]
	}
	return cols
}

// ActivityHeader returns the markdown header row of the activities table for
// the language named in the teacher context.
func ActivityHeader(language string) string {
	cols := ActivityColumns(ParseLanguage(language))
	return FormatRow(cols[:]...)
}

// ContextColumns are the labels of the four-column context table.
var ContextColumns = [4]string{"Personal", "Educativo", "Social", "Profesional"}

// A header row of the activities table names the sequencing column in its
// first cell: it mentions both sequencing and activities in any of the
// template languages, e.g. "Secuenciación de las actividades".
var (
	sequencingStems = []string{"secuenci", "seqüenci", "sequenc"}
	activityStems   = []string{"activ"}
)

func isActivityHeader(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	lead := strings.ToLower(norm.NFC.String(cells[0]))
	return containsAny(lead, sequencingStems) && containsAny(lead, activityStems)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
