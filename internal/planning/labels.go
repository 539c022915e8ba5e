package planning

// infoLabel is one of the rows of the general information block of the detail modal. The set is
// closed, a label outside of it means the portal changed.
type infoLabel int

const (
	labelStatus infoLabel = iota
	labelSubject
	labelType
	labelDescription
	labelIsExam

	labelCount
)

func (l infoLabel) String() string {
	switch l {
	case labelStatus:
		return "status"
	case labelSubject:
		return "subject"
	case labelType:
		return "type"
	case labelDescription:
		return "description"
	case labelIsExam:
		return "is exam"
	}
	return "unknown"
}

// infoLabels maps the label texts of both portal languages.
var infoLabels = map[string]infoLabel{
	"Statut":              labelStatus,
	"Status":              labelStatus,
	"Matière":             labelSubject,
	"Subject":             labelSubject,
	"Type d'enseignement": labelType,
	"Teaching type":       labelType,
	"Description":         labelDescription,
	"Est une épreuve":     labelIsExam,
	"Is an exam":          labelIsExam,
}

var affirmatives = map[string]bool{
	"Oui": true,
	"Yes": true,
}

// emptySentinels are the texts of the single row a data table shows when it has no records.
var emptySentinels = map[string]bool{
	"Aucun enregistrement":         true,
	"Aucun enregistrement trouvé.": true,
	"No records found.":            true,
}
