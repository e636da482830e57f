package ingestion

import "fmt"

// UnsupportedTypeError rejects an input that is neither PDF nor plain text.
type UnsupportedTypeError struct {
	Name string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return e.Message()
}

// Message returns the user-facing rejection.
func (e *UnsupportedTypeError) Message() string {
	if e.Type == docxMIME {
		return "DOCX files are not yet supported. Please convert to PDF or TXT format."
	}
	if e.Type == "" {
		return fmt.Sprintf("Unsupported file type for %s. Please upload a PDF or TXT file.", e.Name)
	}
	return fmt.Sprintf("Unsupported file type %s for %s. Please upload a PDF or TXT file.", e.Type, e.Name)
}

// ParseError wraps a failure to read text out of a supported file.
type ParseError struct {
	Name    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to read %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to read %s: %s", e.Name, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
