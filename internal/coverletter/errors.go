package coverletter

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// InputValidationError reports a missing or invalid input, detected before any
// network or model call.
type InputValidationError struct {
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// User-facing validation messages.
const (
	MsgMissingAPIKey      = "Please set your GOOGLE_API_KEY environment variable"
	MsgMissingResume      = "Please provide your resume content"
	MsgMissingCoverLetter = "Please provide a cover letter to improve"
)

var fieldMessages = map[string]string{
	"APIKey":      MsgMissingAPIKey,
	"ResumeText":  MsgMissingResume,
	"CoverLetter": MsgMissingCoverLetter,
}

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// validateStruct runs the struct tags of v and converts the first failure into
// an *InputValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	msg, ok := fieldMessages[first.Field()]
	if !ok {
		msg = fmt.Sprintf("failed %q validation", first.Tag())
	}
	return &InputValidationError{Field: first.Field(), Message: msg}
}
