// session.go contains the http plumbing shared by every step of a scrape, the steps themselves live
// in auth.go and planning.go.

package lise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"time"

	"liseplanning/internal/components/assert"
	"liseplanning/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("liseplanning/internal/scrapers/lise")

const (
	report_session_authenticate   = "session.authenticate"
	report_session_navigate       = "session.navigate"
	report_session_fetch_planning = "session.fetch-planning"
	report_session_fetch_detail   = "session.fetch-detail"
)

// SessionState is the browser state the portal expects to be echoed back: the cookies it set and the
// two hidden form tokens. Every step takes the state produced by the previous step and returns a new
// one, a SessionState is never modified.
type SessionState struct {
	cookies   []*http.Cookie
	initToken string
	viewToken string
}

// Cookies returns a copy of the portal cookies captured after the step that produced the state.
func (s SessionState) Cookies() []*http.Cookie {
	return slices.Clone(s.cookies)
}

// Authenticated reports whether the state carries the tokens of a logged in view.
func (s SessionState) Authenticated() bool {
	return s.initToken != "" && s.viewToken != ""
}

// Session is one browser session against the portal, it owns the cookie jar and the connection pool.
//
// A Session is used by exactly one scrape and must not be shared between goroutines, the portal
// keeps a single server-side view per session and every request mutates it.
type Session struct {
	baseUrl *url.URL
	http    *resty.Client
	tel     telemetry.API

	// latestView is the most recent view token issued by the portal.
	latestView string
}

type SessionOptions struct {
	// BaseUrl defaults to https://lise.ensam.eu
	BaseUrl string
	// Timeout applies to every single request, it defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits how fast a session sends requests, 0 disables the limit.
	RequestsPerSecond float64
}

func NewSession(opts SessionOptions, tel telemetry.API) (*Session, error) {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("lise_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	// the login redirects through the CAS host and back
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel)

	return &Session{
		baseUrl: baseUrl,
		http:    client,
		tel:     tel,
	}, nil
}

// advance builds the state following a response, capturing the cookies currently held for the portal.
func (s *Session) advance(initToken, viewToken string) SessionState {
	s.latestView = viewToken
	return SessionState{
		cookies:   s.http.GetClient().Jar.Cookies(s.baseUrl),
		initToken: initToken,
		viewToken: viewToken,
	}
}

// checkCurrent rejects states that are unauthenticated or were superseded by a newer response.
func (s *Session) checkCurrent(op string, state SessionState) error {
	if !state.Authenticated() {
		return &ProtocolError{Op: op, Err: errors.New("session state carries no tokens")}
	}
	if state.viewToken != s.latestView {
		return &ProtocolError{Op: op, Err: ErrStaleSession}
	}
	return nil
}

func (s *Session) send(ctx context.Context, op, method, endpoint string, headers, form map[string]string) (*resty.Response, error) {
	req := s.http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if form != nil {
		req.SetFormData(form)
	}

	res, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if res.IsError() {
		return res, &TransportError{
			Op:         op,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("%s %s", method, res.Status()),
		}
	}
	return res, nil
}

func (s *Session) postPartial(ctx context.Context, op string, form map[string]string) (partialResponse, error) {
	res, err := s.send(ctx, op, http.MethodPost, planningPath, ajaxHeaders, form)
	if err != nil {
		return partialResponse{}, err
	}
	partial, err := decodePartialResponse(res.Body())
	if err != nil {
		return partialResponse{}, &ProtocolError{Op: op, Err: err}
	}
	return partial, nil
}

func parseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// pageTokens extracts the two hidden JSF tokens of a full page.
func pageTokens(doc *goquery.Document) (initToken, viewToken string, err error) {
	initToken = doc.Find(`input[name="form:idInit"]`).AttrOr("value", "")
	viewToken = doc.Find(`input[name="javax.faces.ViewState"]`).AttrOr("value", "")
	if initToken == "" {
		return "", "", fmt.Errorf("page has no %s input", fieldInitToken)
	}
	if viewToken == "" {
		return "", "", fmt.Errorf("page has no %s input", fieldViewState)
	}
	return initToken, viewToken, nil
}

// fail records err on the span and reports it, user mistakes are warnings and everything else is
// a breakage.
func (s *Session) fail(span trace.Span, id string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, id)

	var authErr *AuthError
	var transportErr *TransportError
	switch {
	case errors.As(err, &authErr), errors.As(err, &transportErr):
		s.tel.ReportWarning(id, err)
	default:
		s.tel.ReportBroken(id, err)
	}
	return err
}
