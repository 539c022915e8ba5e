package lise

import (
	"context"
	"errors"
	"testing"
	"time"

	"liseplanning/internal/components/telemetry"
	"liseplanning/internal/scrapers/lise/lisetest"

	"github.com/stretchr/testify/require"
)

func newTestSession(t testing.TB, portal *lisetest.Portal) *Session {
	session, err := NewSession(SessionOptions{
		BaseUrl: portal.Url(),
		Timeout: 5 * time.Second,
	}, telemetry.SlogAPI{})
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func testEvents() []lisetest.Event {
	return []lisetest.Event{
		{Id: "42", Title: "X", Start: "2024-05-28T14:40:00+0200", End: "2024-05-28T16:10:00+0200"},
		{Id: "43", Title: "Y", Start: "2024-05-29T08:00:00+0200", End: "2024-05-29T10:00:00+0200"},
	}
}

func TestAuthenticate(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret")
	session := newTestSession(t, portal)

	state, err := session.Authenticate(context.Background(), "2023-0001", "secret")
	require.NoError(t, err)
	require.True(t, state.Authenticated())
	require.Equal(t, "init-token", state.initToken)
	require.Equal(t, portal.CurrentView(), state.viewToken)

	cookies := state.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "JSESSIONID", cookies[0].Name)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret")
	session := newTestSession(t, portal)

	_, err := session.Authenticate(context.Background(), "2023-0001", "not the password")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.NotContains(t, err.Error(), "not the password")
	require.Equal(t, int64(1), portal.Logins.Load())
}

func TestAuthenticateMissingExecution(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret")
	portal.BrokenLogin = true
	session := newTestSession(t, portal)

	_, err := session.Authenticate(context.Background(), "2023-0001", "secret")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, int64(0), portal.Logins.Load())
}

func TestFullSequence(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)

	state, stubs, err := session.FetchPlanning(ctx, state)
	require.NoError(t, err)
	require.Equal(t, []EventStub{
		{Id: "42", Title: "X", Start: "2024-05-28T14:40:00+0200", End: "2024-05-28T16:10:00+0200"},
		{Id: "43", Title: "Y", Start: "2024-05-29T08:00:00+0200", End: "2024-05-29T10:00:00+0200"},
	}, stubs)
	require.Equal(t, portal.CurrentView(), state.viewToken)

	for _, stub := range stubs {
		var fragment DetailFragment
		state, fragment, err = session.FetchDetail(ctx, state, stub.Id)
		require.NoError(t, err)
		require.Contains(t, string(fragment), "form:j_idt154_content")
	}
	require.Equal(t, int64(2), portal.DetailRequests.Load())
}

func TestStaleStateIsRejected(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)
	state, _, err = session.FetchPlanning(ctx, state)
	require.NoError(t, err)

	next, _, err := session.FetchDetail(ctx, state, "42")
	require.NoError(t, err)
	require.NotEqual(t, state.viewToken, next.viewToken)

	_, _, err = session.FetchDetail(ctx, state, "43")
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	require.True(t, errors.Is(err, ErrStaleSession))
	require.Equal(t, int64(1), portal.DetailRequests.Load())
}

func TestPortalRejectsExpiredView(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)

	// pretend the session issued a token the portal no longer accepts
	state.viewToken = "view-0"
	session.latestView = "view-0"

	_, _, err = session.FetchPlanning(ctx, state)
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	require.Contains(t, err.Error(), "ViewExpiredException")
}

func TestUnauthenticatedStateIsRejected(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret")
	session := newTestSession(t, portal)

	_, err := session.Navigate(context.Background(), SessionState{})
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
}

func TestMissingPlanningFragment(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	portal.OmitPlanning = true
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)

	_, _, err = session.FetchPlanning(ctx, state)
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
}

func TestMissingDetailFragment(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	portal.OmitDetail["43"] = true
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)
	state, _, err = session.FetchPlanning(ctx, state)
	require.NoError(t, err)
	state, _, err = session.FetchDetail(ctx, state, "42")
	require.NoError(t, err)

	_, _, err = session.FetchDetail(ctx, state, "43")
	var protocolErr *ProtocolError
	require.ErrorAs(t, err, &protocolErr)
}

func TestViewStateWithoutRotation(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret", testEvents()...)
	portal.RotateViewState = false
	session := newTestSession(t, portal)
	ctx := context.Background()

	state, err := session.Authenticate(ctx, "2023-0001", "secret")
	require.NoError(t, err)
	state, err = session.Navigate(ctx, state)
	require.NoError(t, err)

	next, _, err := session.FetchPlanning(ctx, state)
	require.NoError(t, err)
	require.Equal(t, state.viewToken, next.viewToken)
}

func TestCancelledContext(t *testing.T) {
	portal := lisetest.NewPortal(t, "2023-0001", "secret")
	session := newTestSession(t, portal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := session.Authenticate(ctx, "2023-0001", "secret")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, context.Canceled)
}
