package app

import "fmt"

// AppErrorType represents the type of application error.
type AppErrorType int

const (
	// InvalidTemplateName indicates a requested name is outside the allow-list.
	InvalidTemplateName AppErrorType = iota
	// TemplateNotFound indicates an allow-listed template is missing upstream.
	TemplateNotFound
	// UpstreamUnavailable indicates the upstream archive could not be fetched.
	UpstreamUnavailable
	// CorruptArchive indicates the upstream archive could not be parsed.
	CorruptArchive
	// WriteFailed indicates the output archive could not be written.
	WriteFailed
	// InvalidRequest indicates a malformed request payload.
	InvalidRequest
	// Canceled indicates the caller went away before the work completed.
	Canceled
	// ConfigInitFailed indicates the configuration file could not be written.
	ConfigInitFailed
	// ConfigInvalid indicates the configuration cannot produce a pipeline.
	ConfigInvalid
)

// String returns the string representation of the error type.
func (t AppErrorType) String() string {
	switch t {
	case InvalidTemplateName:
		return "InvalidTemplateName"
	case TemplateNotFound:
		return "TemplateNotFound"
	case UpstreamUnavailable:
		return "UpstreamUnavailable"
	case CorruptArchive:
		return "CorruptArchive"
	case WriteFailed:
		return "WriteFailed"
	case InvalidRequest:
		return "InvalidRequest"
	case Canceled:
		return "Canceled"
	case ConfigInitFailed:
		return "ConfigInitFailed"
	case ConfigInvalid:
		return "ConfigInvalid"
	default:
		return "Unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Template is the template name involved, if any.
	Template string
	// Available lists the allow-listed names for InvalidTemplateName errors.
	Available []string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidTemplateNameError creates an allow-list violation error.
func NewInvalidTemplateNameError(name string, available []string) *AppError {
	return &AppError{
		Type:      InvalidTemplateName,
		Message:   fmt.Sprintf("Template %q not found", name),
		Template:  name,
		Available: available,
	}
}

// NewTemplateNotFoundError creates an error for a template missing upstream.
func NewTemplateNotFoundError(name string, cause error) *AppError {
	return &AppError{
		Type:     TemplateNotFound,
		Message:  fmt.Sprintf("Template %q not found", name),
		Template: name,
		Cause:    cause,
	}
}

// NewInvalidRequestError creates a request validation error.
func NewInvalidRequestError(message string, cause error) *AppError {
	return NewAppError(InvalidRequest, message, cause)
}
