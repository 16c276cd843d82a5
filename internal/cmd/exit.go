package cmd

import (
	"errors"

	"github.com/goliatone/go-crudgen/internal/wizard"
	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/generator"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitTemplateError indicates malformed markup, an unknown reference or a
	// type mismatch in a template.
	ExitTemplateError = 2

	// ExitValidationError indicates an invalid entity or generated code that
	// lacks its required markers.
	ExitValidationError = 3

	// ExitAborted indicates the user interrupted an interactive prompt.
	ExitAborted = 130
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFromError determines the exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var (
		syntaxErr *jinja.SyntaxError
		refErr    *jinja.UnknownReferenceError
		typeErr   *jinja.TypeMismatchError
		markerErr *generator.MarkerError
	)
	switch {
	case errors.Is(err, wizard.ErrAborted):
		return ExitAborted
	case errors.As(err, &syntaxErr), errors.As(err, &refErr), errors.As(err, &typeErr):
		return ExitTemplateError
	case errors.As(err, &markerErr), errors.Is(err, entity.ErrInvalidEntity), errors.Is(err, entity.ErrInvalidIdentifier):
		return ExitValidationError
	default:
		return ExitGeneralError
	}
}
