package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/attendly/go-workforce-server/internal/errors"
)

// Meta carries pagination details for list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the standard response wrapper for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, message string, data any) {
	s.write(w, status, Envelope{Success: true, Message: message, Data: data})
}

func (s *Server) respondFailure(w http.ResponseWriter, status int, message string) {
	s.write(w, status, Envelope{Success: false, Message: message})
}

// respondError maps a core error to its stable HTTP status and a non-leaky
// message. Infrastructure faults surface as 503 and are logged as incidents,
// never conflated with authorization denials.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError || errs.Is(err, errs.ErrDependencyUnavailable) {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		s.log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	s.respondFailure(w, status, message)
}

func (s *Server) write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encode response payload failed")
	}
}
