package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tacogips/stackzip/internal/app"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message,omitempty"`
	Available []string `json:"available,omitempty"`
	Details   []string `json:"details,omitempty"`
}

// rateLimitedMessage is returned with 429 responses.
const rateLimitedMessage = "Too many requests, please try again later."

// statusFor maps an application error type to its HTTP status and headline.
func statusFor(t app.AppErrorType) (int, string) {
	switch t {
	case app.InvalidTemplateName:
		return http.StatusBadRequest, "Invalid template"
	case app.InvalidRequest:
		return http.StatusBadRequest, "Invalid request"
	case app.TemplateNotFound:
		return http.StatusNotFound, "Template not found"
	case app.UpstreamUnavailable:
		return http.StatusBadGateway, "Failed to fetch templates from GitHub"
	case app.CorruptArchive:
		return http.StatusBadGateway, "Invalid upstream archive"
	case app.Canceled:
		return http.StatusServiceUnavailable, "Request canceled"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// newErrorResponse renders err for a client. Errors that are not AppErrors
// are reported as a generic server error.
func newErrorResponse(err error) (int, errorResponse) {
	var appErr *app.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, errorResponse{Error: "Server error", Message: "Unknown error"}
	}
	status, headline := statusFor(appErr.Type)
	resp := errorResponse{
		Error:     headline,
		Message:   appErr.Message,
		Available: appErr.Available,
	}
	var issues SchemaIssues
	if errors.As(appErr.Cause, &issues) {
		resp.Details = issues
	}
	return status, resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
