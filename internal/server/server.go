// Package server exposes the feeds over http. Calendar clients subscribe to
// /{username}?password=...&formatting_desc=true and poll it.
package server

import (
	"context"
	"net/http"
	"strconv"

	"liseplanning/internal/components/assert"
	"liseplanning/internal/components/telemetry"
)

const banner = "lise planning feed server\n"

const (
	report_server_feed = "feed"
)

// Fetcher returns the feed of a student, service.FeedService is the implementation.
type Fetcher interface {
	Fetch(ctx context.Context, username, password string, formatDescription bool) ([]byte, error)
}

type Server struct {
	fetcher Fetcher
	tel     telemetry.API
}

func NewServer(fetcher Fetcher, tel telemetry.API) Server {
	assert.NotNil(fetcher, "fetcher")
	assert.NotNil(tel, "telemetry")
	return Server{
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("server", tel),
	}
}

// Handler returns the routes of the server.
func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.ping)
	mux.HandleFunc("GET /{username}", s.feed)
	return mux
}

func (s Server) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	w.Write([]byte(banner))
}

func (s Server) feed(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	query := r.URL.Query()
	password := query.Get("password")
	if password == "" {
		writeJSONError(w, http.StatusBadRequest, ErrorCodeValidation, "missing password query parameter")
		return
	}

	formatDescription := false
	if raw := query.Get("formatting_desc"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, ErrorCodeValidation, "formatting_desc must be true or false")
			return
		}
		formatDescription = parsed
	}

	feed, err := s.fetcher.Fetch(r.Context(), username, password, formatDescription)
	if err != nil {
		status, code, message := classify(err)
		if status == http.StatusUnauthorized {
			s.tel.ReportWarning(report_server_feed, err)
		} else {
			s.tel.ReportBroken(report_server_feed, err)
		}
		writeJSONError(w, status, code, message)
		return
	}

	w.Header().Set("content-type", "text/calendar; charset=utf-8")
	w.Header().Set("content-disposition", "attachment; filename=planning.ics")
	w.Write(feed)
}
