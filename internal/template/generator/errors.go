package generator

import "fmt"

// GeneratorErrorType categorizes generator errors.
type GeneratorErrorType int

const (
	// GeneratorTemplateNotFound indicates no archive entry lives under the template's folder.
	GeneratorTemplateNotFound GeneratorErrorType = iota
	// GeneratorPathError indicates an invalid or unsafe path was encountered.
	GeneratorPathError
	// GeneratorReadFailed indicates an entry could not be materialized from the archive.
	GeneratorReadFailed
	// GeneratorWriteFailed indicates a file write operation failed.
	GeneratorWriteFailed
	// GeneratorCanceled indicates assembly stopped because the context was done.
	GeneratorCanceled
)

// String returns the string representation of the error type.
func (t GeneratorErrorType) String() string {
	switch t {
	case GeneratorTemplateNotFound:
		return "TemplateNotFound"
	case GeneratorPathError:
		return "PathError"
	case GeneratorReadFailed:
		return "ReadFailed"
	case GeneratorWriteFailed:
		return "WriteFailed"
	case GeneratorCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// GeneratorError represents generator-specific errors.
type GeneratorError struct {
	// Type categorizes the error.
	Type GeneratorErrorType
	// Message is the error message.
	Message string
	// Template is the template being processed (if applicable).
	Template string
	// File is the file path related to the error (if applicable).
	File string
	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *GeneratorError) Error() string {
	msg := e.Message
	if e.Template != "" {
		msg = fmt.Sprintf("%s (template: %s)", msg, e.Template)
	}
	if e.File != "" {
		msg = fmt.Sprintf("%s (file: %s)", msg, e.File)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// newGeneratorError creates a new GeneratorError.
func newGeneratorError(typ GeneratorErrorType, message, template, file string, cause error) *GeneratorError {
	return &GeneratorError{
		Type:     typ,
		Message:  message,
		Template: template,
		File:     file,
		Cause:    cause,
	}
}
