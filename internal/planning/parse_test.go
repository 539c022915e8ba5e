package planning

import (
	"errors"
	"strings"
	"testing"

	"liseplanning/internal/scrapers/lise/lisetest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseSample(t *testing.T) {
	info, err := Parse(lisetest.SampleDetail())
	require.NoError(t, err)

	expected := EventInfo{
		Status:      "Confirmé",
		Subject:     "Mathématiques",
		Type:        "Cours magistral",
		Description: "Chapitre 3",
		IsExam:      false,
		Resources:   []Resource{{Code: "AMPHI-A", Name: "Amphithéâtre A"}},
		Staff:       []Person{{LastName: "DUPONT", FirstName: "Marie"}},
		Students: []Person{
			{LastName: "MARTIN", FirstName: "Paul"},
			{LastName: "BERNARD", FirstName: "Léa"},
		},
		Groups:  []Group{{Code: "G1-FIT", Name: "Groupe FIT 1"}},
		Courses: []Course{{Code: "MATH1", Name: "Algèbre linéaire", Module: "Mathématiques S5"}},
	}
	if diff := cmp.Diff(expected, info); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseDeterministic(t *testing.T) {
	first, err := Parse(lisetest.SampleDetail())
	require.NoError(t, err)
	second, err := Parse(lisetest.SampleDetail())
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(first, second))
}

func TestParseExam(t *testing.T) {
	fragment := strings.Replace(
		lisetest.SampleDetail(),
		`<div class="ui-panelgrid-cell ui-grid-col-6">Non</div>`,
		`<div class="ui-panelgrid-cell ui-grid-col-6">Oui</div>`,
		1,
	)
	info, err := Parse(fragment)
	require.NoError(t, err)
	require.True(t, info.IsExam)
}

func TestParseKeepsDescriptionText(t *testing.T) {
	fragment := strings.Replace(
		lisetest.SampleDetail(),
		`<div class="ui-panelgrid-cell ui-grid-col-6">Chapitre 3</div>`,
		"<div class=\"ui-panelgrid-cell ui-grid-col-6\">\n  Line one\nLine two   spaced\n</div>",
		1,
	)
	require.NotEqual(t, lisetest.SampleDetail(), fragment)

	info, err := Parse(fragment)
	require.NoError(t, err)
	require.Equal(t, "Line one\nLine two   spaced", info.Description)
}

func TestParseEnglishLabels(t *testing.T) {
	fragment := strings.NewReplacer(
		">Statut<", ">Status<",
		">Matière<", ">Subject<",
		">Type d'enseignement<", ">Teaching type<",
		">Est une épreuve<", ">Is an exam<",
		">Non<", ">Yes<",
	).Replace(lisetest.SampleDetail())

	info, err := Parse(fragment)
	require.NoError(t, err)
	require.Equal(t, "Confirmé", info.Status)
	require.Equal(t, "Cours magistral", info.Type)
	require.True(t, info.IsExam)
}

func TestParseEmptySection(t *testing.T) {
	fragment := strings.Replace(
		lisetest.SampleDetail(),
		`<tr data-ri="0" class="ui-widget-content ui-datatable-even" role="row"><td role="gridcell">G1-FIT</td><td role="gridcell">Groupe FIT 1</td></tr>`,
		`<tr class="ui-widget-content ui-datatable-empty-message"><td colspan="2">Aucun enregistrement trouvé.</td></tr>`,
		1,
	)
	info, err := Parse(fragment)
	require.NoError(t, err)
	require.Empty(t, info.Groups)
	require.Len(t, info.Courses, 1)
}

func TestParseFailures(t *testing.T) {
	testCases := []struct {
		name    string
		old     string
		new     string
		section string
	}{
		{
			name:    "unknown label",
			old:     ">Matière<",
			new:     ">Salle<",
			section: "global info",
		},
		{
			name:    "missing global info",
			old:     `id="form:j_idt154_content"`,
			new:     `id="form:other"`,
			section: "global info",
		},
		{
			name:    "missing label",
			old:     `<div class="ui-panelgrid-cell ui-grid-col-6">Description</div>`,
			new:     `<div class="ui-panelgrid-cell ui-grid-col-6">Statut</div>`,
			section: "global info",
		},
		{
			name:    "short row",
			old:     `<td role="gridcell">MATH1</td><td role="gridcell">Algèbre linéaire</td><td role="gridcell">Mathématiques S5</td>`,
			new:     `<td role="gridcell">MATH1</td><td role="gridcell">Algèbre linéaire</td>`,
			section: "courses",
		},
		{
			name:    "missing table",
			old:     `id="form:onglets:apprenantsTable_data"`,
			new:     `id="form:onglets:other_data"`,
			section: "students",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fragment := strings.Replace(lisetest.SampleDetail(), tc.old, tc.new, 1)
			require.NotEqual(t, lisetest.SampleDetail(), fragment)

			_, err := Parse(fragment)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %v", err)
			require.Equal(t, tc.section, parseErr.Section)
		})
	}
}
