// Package lisetest provides an in-process imitation of the portal for tests. It implements just
// enough of the CAS login and the JSF view state handling to exercise a full scrape.
package lisetest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

//go:embed testdata/detail.html
var sampleDetail string

// SampleDetail is a detail modal taken from the portal: one course, one resource, one staff member,
// two students and one group.
func SampleDetail() string {
	return sampleDetail
}

// Event is one planning entry served by the fake portal.
type Event struct {
	Id     string
	Title  string
	Start  string
	End    string
	AllDay bool
	// Detail is the markup of the detail modal, it defaults to SampleDetail().
	Detail string
}

type Portal struct {
	Server *httptest.Server

	Username string
	Password string
	Events   []Event

	// OmitDetail makes the detail response for these event ids miss the modal fragment.
	OmitDetail map[string]bool
	// OmitPlanning makes the planning response miss the planning fragment.
	OmitPlanning bool
	// RotateViewState makes every partial response issue a new view token.
	RotateViewState bool
	// BrokenLogin serves a login page without the execution identifier.
	BrokenLogin bool

	Logins         atomic.Int64
	DetailRequests atomic.Int64

	mu          sync.Mutex
	viewCounter int
	currentView string
}

// NewPortal starts a fake portal that accepts username/password, it is closed when the test ends.
func NewPortal(t testing.TB, username, password string, events ...Event) *Portal {
	p := &Portal{
		Username:        username,
		Password:        password,
		Events:          events,
		OmitDetail:      map[string]bool{},
		RotateViewState: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/cas/login?service=lise", http.StatusFound)
	})
	mux.HandleFunc("GET /cas/login", p.loginPage)
	mux.HandleFunc("POST /cas/login", p.login)
	mux.HandleFunc("GET /faces/MainMenuPage.xhtml", p.mainMenu)
	mux.HandleFunc("POST /faces/MainMenuPage.xhtml", p.menuAction)
	mux.HandleFunc("POST /faces/Planning.xhtml", p.planning)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// Url is the base url of the portal.
func (p *Portal) Url() string {
	return p.Server.URL
}

// CurrentView returns the view token the portal currently accepts.
func (p *Portal) CurrentView() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentView
}

func (p *Portal) nextView() string {
	p.viewCounter++
	p.currentView = fmt.Sprintf("view-%d", p.viewCounter)
	return p.currentView
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
<form id="fm1" method="post">
  <input type="text" name="username">
  <input type="password" name="password">
  <input type="hidden" name="execution" value="{{.}}">
  <input type="hidden" name="_eventId" value="submit">
</form>
</body></html>`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><body>
<form id="form" name="form" method="post">
  <input type="hidden" name="form:idInit" value="{{.Init}}">
  <div id="form:j_idt118"></div>
  <input type="hidden" name="javax.faces.ViewState" id="j_id1:javax.faces.ViewState:0" value="{{.View}}">
</form>
</body></html>`))

func (p *Portal) loginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if p.BrokenLogin {
		w.Write([]byte(`<!DOCTYPE html><html><body><p>Maintenance</p></body></html>`))
		return
	}
	loginTemplate.Execute(w, "e1s1-execution")
}

func (p *Portal) login(w http.ResponseWriter, r *http.Request) {
	p.Logins.Add(1)
	if r.FormValue("execution") != "e1s1-execution" || r.FormValue("_eventId") != "submit" {
		http.Error(w, "bad login form", http.StatusBadRequest)
		return
	}
	if r.FormValue("username") != p.Username || r.FormValue("password") != p.Password {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		loginTemplate.Execute(w, "e1s2-execution")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-" + p.Username, Path: "/"})
	http.Redirect(w, r, "/faces/MainMenuPage.xhtml", http.StatusFound)
}

func (p *Portal) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("JSESSIONID")
	return err == nil && cookie.Value == "session-"+p.Username
}

func (p *Portal) writePage(w http.ResponseWriter) {
	p.mu.Lock()
	view := p.nextView()
	p.mu.Unlock()

	w.Header().Set("content-type", "text/html; charset=utf-8")
	pageTemplate.Execute(w, struct{ Init, View string }{Init: "init-token", View: view})
}

func (p *Portal) mainMenu(w http.ResponseWriter, r *http.Request) {
	if !p.authenticated(r) {
		http.Redirect(w, r, "/cas/login", http.StatusFound)
		return
	}
	p.writePage(w)
}

// checkView validates the tokens of a form post against the view the portal currently holds.
func (p *Portal) checkView(r *http.Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticated(r) &&
		r.FormValue("form:idInit") == "init-token" &&
		r.FormValue("javax.faces.ViewState") == p.currentView
}

func (p *Portal) menuAction(w http.ResponseWriter, r *http.Request) {
	if !p.checkView(r) || r.FormValue("form:j_idt806") != "form:j_idt806" {
		http.Error(w, "view expired", http.StatusInternalServerError)
		return
	}
	p.writePage(w)
}

type partialUpdate struct {
	id   string
	body string
}

func (p *Portal) writePartial(w http.ResponseWriter, updates ...partialUpdate) {
	if p.RotateViewState {
		p.mu.Lock()
		view := p.nextView()
		p.mu.Unlock()
		updates = append(updates, partialUpdate{id: "j_id1:javax.faces.ViewState:0", body: view})
	}

	var out strings.Builder
	out.WriteString(`<?xml version='1.0' encoding='UTF-8'?>`)
	out.WriteString(`<partial-response id="j_id1"><changes>`)
	for _, u := range updates {
		fmt.Fprintf(&out, `<update id="%s"><![CDATA[%s]]></update>`, u.id, u.body)
	}
	out.WriteString(`</changes></partial-response>`)

	w.Header().Set("content-type", "text/xml;charset=UTF-8")
	w.Write([]byte(out.String()))
}

func (p *Portal) planning(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("faces-request") != "partial/ajax" {
		http.Error(w, "not an ajax request", http.StatusBadRequest)
		return
	}
	if !p.checkView(r) {
		w.Header().Set("content-type", "text/xml;charset=UTF-8")
		w.Write([]byte(`<?xml version='1.0' encoding='UTF-8'?><partial-response><error><error-name>class javax.faces.application.ViewExpiredException</error-name><error-message><![CDATA[view expired]]></error-message></error></partial-response>`))
		return
	}

	selected := r.FormValue("form:j_idt118_selectedEventId")
	if selected == "" {
		p.planningList(w, r)
		return
	}
	p.DetailRequests.Add(1)

	if p.OmitDetail[selected] {
		p.writePartial(w, partialUpdate{id: "form:confirmerSuppression", body: "<div></div>"})
		return
	}
	for _, e := range p.Events {
		if e.Id != selected {
			continue
		}
		detail := e.Detail
		if detail == "" {
			detail = sampleDetail
		}
		p.writePartial(
			w,
			partialUpdate{id: "form:modaleDetail", body: detail},
			partialUpdate{id: "form:confirmerSuppression", body: "<div></div>"},
		)
		return
	}
	http.Error(w, "unknown event", http.StatusNotFound)
}

func (p *Portal) planningList(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("form:j_idt118_start") != "0" || r.FormValue("form:j_idt118_end") != "10710025200000" {
		http.Error(w, "bad range", http.StatusBadRequest)
		return
	}
	if p.OmitPlanning {
		p.writePartial(w, partialUpdate{id: "form:messages", body: "<div></div>"})
		return
	}

	type jsonEvent struct {
		Id     string `json:"id"`
		Title  string `json:"title"`
		Start  string `json:"start"`
		End    string `json:"end"`
		AllDay bool   `json:"allDay"`
	}
	payload := struct {
		Events []jsonEvent `json:"events"`
	}{Events: []jsonEvent{}}
	for _, e := range p.Events {
		payload.Events = append(payload.Events, jsonEvent{
			Id:     e.Id,
			Title:  e.Title,
			Start:  e.Start,
			End:    e.End,
			AllDay: e.AllDay,
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p.writePartial(w, partialUpdate{id: "form:j_idt118", body: string(body)})
}
