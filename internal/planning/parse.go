package planning

import (
	"fmt"
	"strings"

	"liseplanning/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const globalInfoId = "form:j_idt154_content"

type dataTable struct {
	section string
	id      string
	columns int
}

var (
	resourcesTable = dataTable{section: "resources", id: "form:onglets:j_idt166_data", columns: 2}
	staffTable     = dataTable{section: "staff", id: "form:onglets:j_idt174_data", columns: 2}
	studentsTable  = dataTable{section: "students", id: "form:onglets:apprenantsTable_data", columns: 2}
	groupsTable    = dataTable{section: "groups", id: "form:onglets:j_idt213_data", columns: 2}
	coursesTable   = dataTable{section: "courses", id: "form:onglets:j_idt221_data", columns: 3}
)

// Parse extracts the information of a planning entry from the markup of its detail modal.
//
// Parsing is strict: a missing block, an unknown label or a short table row is a *ParseError.
func Parse(fragment string) (EventInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return EventInfo{}, &ParseError{Section: "document", Err: err}
	}

	info, err := parseGlobalInfo(doc)
	if err != nil {
		return EventInfo{}, err
	}

	rows, err := tableRows(doc, resourcesTable)
	if err != nil {
		return EventInfo{}, err
	}
	for _, cells := range rows {
		info.Resources = append(info.Resources, Resource{Code: cells[0], Name: cells[1]})
	}

	rows, err = tableRows(doc, staffTable)
	if err != nil {
		return EventInfo{}, err
	}
	info.Staff = people(rows)

	rows, err = tableRows(doc, studentsTable)
	if err != nil {
		return EventInfo{}, err
	}
	info.Students = people(rows)

	rows, err = tableRows(doc, groupsTable)
	if err != nil {
		return EventInfo{}, err
	}
	for _, cells := range rows {
		info.Groups = append(info.Groups, Group{Code: cells[0], Name: cells[1]})
	}

	rows, err = tableRows(doc, coursesTable)
	if err != nil {
		return EventInfo{}, err
	}
	for _, cells := range rows {
		info.Courses = append(info.Courses, Course{Code: cells[0], Name: cells[1], Module: cells[2]})
	}

	return info, nil
}

func parseGlobalInfo(doc *goquery.Document) (EventInfo, error) {
	fail := func(err error) (EventInfo, error) {
		return EventInfo{}, &ParseError{Section: "global info", Err: err}
	}

	block := doc.Find(`div[id="` + globalInfoId + `"]`)
	if block.Length() == 0 {
		return fail(fmt.Errorf("no %s block", globalInfoId))
	}

	var info EventInfo
	var seen [labelCount]bool
	var rowErr error
	block.Find("div.ui-grid-row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("div.ui-panelgrid-cell.ui-grid-col-6")
		if cells.Length() < 2 {
			rowErr = fmt.Errorf("row %d has %d cells, expected 2", i, cells.Length())
			return false
		}
		text := htmlutil.CleanText(cells.Eq(0))
		// values are free text typed on the portal, only the markup indentation is dropped
		value := strings.TrimSpace(cells.Eq(1).Text())

		label, ok := infoLabels[text]
		if !ok {
			rowErr = fmt.Errorf("unknown label %q", text)
			return false
		}
		switch label {
		case labelStatus:
			info.Status = value
		case labelSubject:
			info.Subject = value
		case labelType:
			info.Type = value
		case labelDescription:
			info.Description = value
		case labelIsExam:
			info.IsExam = affirmatives[value]
		default:
			rowErr = fmt.Errorf("label %q has no field", text)
			return false
		}
		seen[label] = true
		return true
	})
	if rowErr != nil {
		return fail(rowErr)
	}

	var missing []string
	for label := infoLabel(0); label < labelCount; label++ {
		if !seen[label] {
			missing = append(missing, label.String())
		}
	}
	if len(missing) > 0 {
		return fail(fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	return info, nil
}

// tableRows returns the trimmed text of the first table.columns cells of every row. A table showing
// the "no records" row yields no rows.
func tableRows(doc *goquery.Document, table dataTable) ([][]string, error) {
	body := doc.Find(`tbody[id="` + table.id + `"]`)
	if body.Length() == 0 {
		return nil, &ParseError{Section: table.section, Err: fmt.Errorf("no %s table", table.id)}
	}

	var rows [][]string
	var rowErr error
	empty := false
	body.ChildrenFiltered("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.ChildrenFiltered("td")
		if tds.Length() > 0 && emptySentinels[htmlutil.CleanText(tds.First())] {
			empty = true
			return false
		}
		if tds.Length() < table.columns {
			rowErr = fmt.Errorf("row %d has %d cells, expected %d", i, tds.Length(), table.columns)
			return false
		}

		cells := make([]string, table.columns)
		for c := range cells {
			cells[c] = htmlutil.CleanText(tds.Eq(c))
		}
		rows = append(rows, cells)
		return true
	})
	if rowErr != nil {
		return nil, &ParseError{Section: table.section, Err: rowErr}
	}
	if empty {
		return nil, nil
	}
	return rows, nil
}

func people(rows [][]string) []Person {
	var out []Person
	for _, cells := range rows {
		out = append(out, Person{LastName: cells[0], FirstName: cells[1]})
	}
	return out
}
