package archive

import "fmt"

// ArchiveErrorType categorizes archive errors.
type ArchiveErrorType int

const (
	// ArchiveCorrupt indicates the input bytes could not be read as a zip archive.
	ArchiveCorrupt ArchiveErrorType = iota
	// ArchiveEntryInvalid indicates an entry was unknown or unusable for the operation.
	ArchiveEntryInvalid
	// ArchiveWriteFailed indicates the output sink rejected data or the write was canceled.
	ArchiveWriteFailed
	// ArchiveStateInvalid indicates an operation was attempted from a state that forbids it.
	ArchiveStateInvalid
)

// String returns the string representation of the error type.
func (t ArchiveErrorType) String() string {
	switch t {
	case ArchiveCorrupt:
		return "CorruptArchive"
	case ArchiveEntryInvalid:
		return "EntryInvalid"
	case ArchiveWriteFailed:
		return "WriteFailed"
	case ArchiveStateInvalid:
		return "StateInvalid"
	default:
		return "Unknown"
	}
}

// ArchiveError represents archive read or write failures.
type ArchiveError struct {
	// Type categorizes the error.
	Type ArchiveErrorType
	// Message is the error message.
	Message string
	// Entry is the archive path involved, if any.
	Entry string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	msg := e.Message
	if e.Entry != "" {
		msg = fmt.Sprintf("%s (entry: %s)", msg, e.Entry)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

func newArchiveError(typ ArchiveErrorType, message, entry string, cause error) *ArchiveError {
	return &ArchiveError{
		Type:    typ,
		Message: message,
		Entry:   entry,
		Cause:   cause,
	}
}
