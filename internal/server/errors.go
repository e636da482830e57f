package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/rendering"
)

// ErrValidation indicates a malformed request.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrTooLarge indicates an upload over the configured limit.
type ErrTooLarge struct {
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		tooLarge    *ErrTooLarge
		input       *coverletter.InputValidationError
		invalidURL  *extraction.InvalidURLError
		unsupported *ingestion.UnsupportedTypeError
		parseErr    *ingestion.ParseError
		extractErr  *extraction.AllStrategiesFailedError
		genErr      *llm.GenerationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &input), errors.As(err, &invalidURL),
		errors.Is(err, rendering.ErrEmptyLetter):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extractErr), errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	case errors.Is(err, coverletter.ErrNoModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the text shown to API callers for err.
func userMessage(err error) string {
	var (
		input       *coverletter.InputValidationError
		unsupported *ingestion.UnsupportedTypeError
		extractErr  *extraction.AllStrategiesFailedError
		invalidURL  *extraction.InvalidURLError
		genErr      *llm.GenerationError
		renderErr   *rendering.RenderError
	)
	switch {
	case errors.As(err, &input):
		return input.Message
	case errors.As(err, &unsupported):
		return unsupported.Message()
	case errors.As(err, &extractErr):
		return extractErr.Message()
	case errors.As(err, &invalidURL):
		return "The job URL is not valid: " + invalidURL.Message
	case errors.As(err, &genErr):
		return "Error generating cover letter: " + genErr.Message
	case errors.As(err, &renderErr):
		return "Error creating PDF: " + renderErr.Message
	default:
		return err.Error()
	}
}
