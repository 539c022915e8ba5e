package lise

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Authenticate logs into the portal through its CAS login page and returns the state of the
// authenticated landing page. There is exactly one attempt per call.
func (s *Session) Authenticate(ctx context.Context, username, password string) (SessionState, error) {
	const op = "authenticate"
	ctx, span := tracer.Start(ctx, "Session.Authenticate")
	defer span.End()

	res, err := s.send(ctx, op, http.MethodGet, rootPath, browserHeaders, nil)
	if err != nil {
		return SessionState{}, s.fail(span, report_session_authenticate, err)
	}
	doc, err := parseDocument(res.Body())
	if err != nil {
		return SessionState{}, s.fail(span, report_session_authenticate, &AuthError{
			Op:  op,
			Err: fmt.Errorf("parse login page: %w", err),
		})
	}

	execution := doc.Find(`input[name="execution"]`).AttrOr("value", "")
	if execution == "" {
		return SessionState{}, s.fail(span, report_session_authenticate, &AuthError{
			Op:  op,
			Err: errors.New("login page has no execution identifier"),
		})
	}

	// the credentials are posted back to wherever the redirects landed, that is the CAS login form
	loginUrl := res.RawResponse.Request.URL.String()

	res, err = s.send(ctx, op, http.MethodPost, loginUrl, browserHeaders, map[string]string{
		fieldUsername:    username,
		fieldPassword:    password,
		fieldExecution:   execution,
		fieldEventId:     "submit",
		fieldGeolocation: "",
	})
	var transportErr *TransportError
	if errors.As(err, &transportErr) &&
		(transportErr.StatusCode == http.StatusUnauthorized || transportErr.StatusCode == http.StatusForbidden) {
		return SessionState{}, s.fail(span, report_session_authenticate, &AuthError{
			Op:  op,
			Err: errors.New("credentials were rejected"),
		})
	}
	if err != nil {
		return SessionState{}, s.fail(span, report_session_authenticate, err)
	}

	doc, err = parseDocument(res.Body())
	if err != nil {
		return SessionState{}, s.fail(span, report_session_authenticate, &AuthError{
			Op:  op,
			Err: fmt.Errorf("parse landing page: %w", err),
		})
	}
	// a wrong password lands back on the login form, which carries none of the portal tokens
	initToken, viewToken, err := pageTokens(doc)
	if err != nil {
		return SessionState{}, s.fail(span, report_session_authenticate, &AuthError{
			Op:  op,
			Err: fmt.Errorf("landing page is not authenticated: %w", err),
		})
	}

	return s.advance(initToken, viewToken), nil
}

// Navigate clicks the planning entry of the main menu, which makes the planning view the current
// server-side view.
func (s *Session) Navigate(ctx context.Context, state SessionState) (SessionState, error) {
	const op = "navigate"
	ctx, span := tracer.Start(ctx, "Session.Navigate")
	defer span.End()

	err := s.checkCurrent(op, state)
	if err != nil {
		return SessionState{}, s.fail(span, report_session_navigate, err)
	}

	res, err := s.send(ctx, op, http.MethodPost, mainMenuPath, browserHeaders, menuForm(state))
	if err != nil {
		return SessionState{}, s.fail(span, report_session_navigate, err)
	}
	doc, err := parseDocument(res.Body())
	if err != nil {
		return SessionState{}, s.fail(span, report_session_navigate, &ProtocolError{
			Op:  op,
			Err: fmt.Errorf("parse planning page: %w", err),
		})
	}
	initToken, viewToken, err := pageTokens(doc)
	if err != nil {
		return SessionState{}, s.fail(span, report_session_navigate, &ProtocolError{Op: op, Err: err})
	}

	return s.advance(initToken, viewToken), nil
}
