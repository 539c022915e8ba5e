package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"liseplanning/internal/planning"
	"liseplanning/internal/scrapers/lise"
)

const (
	ErrorCodeValidation   = "validation_error"
	ErrorCodeUnauthorized = "unauthorized"
	ErrorCodeUpstream     = "upstream_error"
	ErrorCodeTimeout      = "upstream_timeout"
	ErrorCodeInternal     = "internal_error"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}

// classify maps a scrape error to the response sent to the client. The messages are fixed strings,
// the wrapped error is only logged.
func classify(err error) (status int, code, message string) {
	var authErr *lise.AuthError
	var protocolErr *lise.ProtocolError
	var transportErr *lise.TransportError
	var parseErr *planning.ParseError

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, ErrorCodeUnauthorized, "the portal rejected the credentials"
	case errors.As(err, &transportErr) && transportErr.StatusCode != 0:
		return http.StatusBadGateway, ErrorCodeUpstream, "the portal answered with an error status"
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout, ErrorCodeTimeout, "the portal could not be reached"
	case errors.As(err, &protocolErr):
		return http.StatusBadGateway, ErrorCodeUpstream, "the portal answered in an unexpected way"
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, ErrorCodeUpstream, "the planning could not be read"
	}
	return http.StatusInternalServerError, ErrorCodeInternal, "internal error"
}
