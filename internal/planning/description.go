package planning

import (
	"fmt"
	"strconv"
	"strings"
)

type Language int

const (
	// French is the language of the portal and the default.
	French Language = iota
	English
)

// ParseLanguage accepts "fr" and "en", an empty string is French.
func ParseLanguage(value string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "fr", "french":
		return French, nil
	case "en", "english":
		return English, nil
	}
	return French, fmt.Errorf("unsupported description language %q", value)
}

type headings struct {
	staff       string
	typ         string
	exam        string
	status      string
	description string
	students    string
	courses     string
	groups      string
}

var languageHeadings = map[Language]headings{
	French: {
		staff:       "Intervenants",
		typ:         "Type",
		exam:        "Examen",
		status:      "Statut",
		description: "Description",
		students:    "Apprenants",
		courses:     "Cours",
		groups:      "Groupes",
	},
	English: {
		staff:       "Staff",
		typ:         "Type",
		exam:        "Exam",
		status:      "Status",
		description: "Description",
		students:    "Students",
		courses:     "Courses",
		groups:      "Groups",
	},
}

// RenderDescription renders the description of an entry. The layout is fixed:
//
//	Intervenants : DUPONT Marie
//	Type : Cours magistral (Examen)
//	Statut : Confirmé
//	Description : Chapitre 3
//	Apprenants : 2
//
//	Cours :
//	Algèbre linéaire, Mathématiques S5
//
//	Groupes :
//	Groupe FIT 1
//
//	Apprenants :
//	MARTIN Paul
//	BERNARD Léa
func RenderDescription(info EventInfo, opts AssembleOptions) string {
	h, ok := languageHeadings[opts.Language]
	if !ok {
		h = languageHeadings[French]
	}
	emphasis := func(s string) string {
		if opts.FormatDescription {
			return "<b>" + s + "</b>"
		}
		return s
	}

	typ := info.Type
	if info.IsExam {
		typ += " (" + h.exam + ")"
	}

	var out strings.Builder
	out.WriteString(emphasis(h.staff+" : ") + joinStrings(info.Staff, ", ") + "\n")
	out.WriteString(emphasis(h.typ+" : ") + typ + "\n")
	out.WriteString(emphasis(h.status+" : ") + info.Status + "\n")
	out.WriteString(emphasis(h.description+" : ") + info.Description + "\n")
	out.WriteString(emphasis(h.students+" : ") + strconv.Itoa(len(info.Students)) + "\n")
	out.WriteString("\n")
	out.WriteString(emphasis(h.courses+" :") + "\n")
	out.WriteString(joinStrings(info.Courses, "\n") + "\n")
	out.WriteString("\n")
	out.WriteString(emphasis(h.groups+" :") + "\n")
	out.WriteString(joinStrings(info.Groups, "\n") + "\n")
	out.WriteString("\n")
	out.WriteString(emphasis(h.students+" :") + "\n")
	out.WriteString(joinStrings(info.Students, "\n") + "\n")
	return out.String()
}
