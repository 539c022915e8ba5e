package lise

// Everything in this file is part of the portal's own implementation (JSF component ids, form field
// names, sentinel values). A change on the portal side breaks these and surfaces as a ProtocolError.

const (
	defaultBaseUrl = "https://lise.ensam.eu"

	rootPath     = "/"
	mainMenuPath = "/faces/MainMenuPage.xhtml"
	planningPath = "/faces/Planning.xhtml"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// CAS login form
const (
	fieldExecution   = "execution"
	fieldUsername    = "username"
	fieldPassword    = "password"
	fieldEventId     = "_eventId"
	fieldGeolocation = "geolocation"
)

// JSF form state
const (
	fieldInitToken = "form:idInit"
	fieldViewState = "javax.faces.ViewState"
)

// component ids
const (
	homePlanningButton = "form:j_idt806"
	planningComponent  = "form:j_idt118"
	planningSecondary  = "form:j_idt244"
	detailComponent    = "form:modaleDetail"
	deleteConfirmation = "form:confirmerSuppression"

	// selected entry in the planning dropdowns, both the menu page and the planning page carry it
	planningSelection = "44323"
)

// The planning range covers every representable entry, the end is a far-future epoch in
// milliseconds.
const (
	planningRangeStart = "0"
	planningRangeEnd   = "10710025200000"
)

var browserHeaders = map[string]string{
	"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"sec-ch-ua-mobile":          "?0",
	"sec-ch-ua-platform":        "\"Linux\"",
	"sec-fetch-dest":            "document",
	"sec-fetch-mode":            "navigate",
	"sec-fetch-site":            "same-origin",
	"sec-fetch-user":            "?1",
	"upgrade-insecure-requests": "1",
}

var ajaxHeaders = map[string]string{
	"accept":           "application/xml, text/xml, */*; q=0.01",
	"faces-request":    "partial/ajax",
	"x-requested-with": "XMLHttpRequest",
}

func menuForm(state SessionState) map[string]string {
	return map[string]string{
		"form":                  "form",
		"form:largeurDivCenter": "581",
		fieldInitToken:          state.initToken,
		"form:sauvegarde":       "",
		"form:j_idt840_input":   planningSelection,
		fieldViewState:          state.viewToken,
		homePlanningButton:      homePlanningButton,
	}
}

func planningForm(state SessionState) map[string]string {
	return map[string]string{
		"javax.faces.partial.ajax":    "true",
		"javax.faces.source":          planningComponent,
		"javax.faces.partial.execute": planningComponent,
		"javax.faces.partial.render":  planningComponent,
		planningComponent:             planningComponent,
		planningComponent + "_start":  planningRangeStart,
		planningComponent + "_end":    planningRangeEnd,
		fieldInitToken:                state.initToken,
		planningSecondary + "_focus":  "",
		planningSecondary + "_input":  planningSelection,
		fieldViewState:                state.viewToken,
	}
}

func detailForm(state SessionState, eventId string) map[string]string {
	return map[string]string{
		"javax.faces.partial.ajax":              "true",
		"javax.faces.source":                    planningComponent,
		"javax.faces.partial.execute":           planningComponent,
		"javax.faces.partial.render":            detailComponent + " " + deleteConfirmation,
		"javax.faces.behavior.event":            "eventSelect",
		"javax.faces.partial.event":             "eventSelect",
		planningComponent + "_selectedEventId": eventId,
		fieldInitToken:                          state.initToken,
		planningComponent + "_view":             "agendaWeek",
		planningSecondary + "_focus":            "",
		planningSecondary + "_input":            planningSelection,
		fieldViewState:                          state.viewToken,
	}
}
