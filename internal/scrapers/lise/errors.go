package lise

import (
	"errors"
	"fmt"
)

// ErrStaleSession is wrapped by a ProtocolError when a step is given a SessionState whose tokens were
// superseded by a later response.
var ErrStaleSession = errors.New("session state is stale, a newer view token was issued")

// AuthError means the portal did not accept the login: either the login page could not be understood
// or the credentials were rejected.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("lise: %s: authentication failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response did not contain the fragment or token the portal is expected to
// send, usually because the portal changed or rejected the request.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("lise: %s: unexpected portal response: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError means the request never produced a usable response (network failure, timeout,
// cancellation or a non-success status).
type TransportError struct {
	Op string
	// StatusCode is 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("lise: %s: transport: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("lise: %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
