// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Endpoints lists the public API routes for the status page.
var Endpoints = []string{
	"/api/article",
	"/api/edits",
	"/api/editors",
	"/api/citations",
	"/api/edit-timeline",
	"/api/reverts",
	"/api/reverters",
	"/api/co-editors",
	"/api/intensity",
	"/api/user-analysis",
	"/api/users/{username}/risk",
	"/api/users/{username}/contributions",
}

// Handler serves the service-level routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// StatusResponse is the body of the root status route.
type StatusResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// Index reports that the API is up and lists its endpoints.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    "online",
		Message:   "WikiDash API is running!",
		Endpoints: Endpoints,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// ErrorResponse is the body of every client error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeBody(w, status, body)
}

// writeBody writes pre-encoded JSON.
func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
