package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/holdem-rooms/internal/table"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    table.Kind     `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse acknowledges operations that return nothing else.
type MessageResponse struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// writeError maps engine errors to status codes: missing records are 404,
// other rule violations 422 and anything without a Kind is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var te *table.Error
	if !errors.As(err, &te) {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	status := http.StatusUnprocessableEntity
	if te.Kind == table.KindNotFound {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, ErrorResponse{Error: te.Message, Kind: te.Kind, Details: te.Details})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, err error) {
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func missingParam(name string) error {
	return &table.Error{
		Kind:    table.KindInvalidArgument,
		Message: fmt.Sprintf("%s is required", name),
		Details: map[string]any{"param": name},
	}
}
