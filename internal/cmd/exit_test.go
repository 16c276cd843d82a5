package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-crudgen/internal/wizard"
	"github.com/goliatone/go-crudgen/pkg/entity"
	"github.com/goliatone/go-crudgen/pkg/generator"
	"github.com/goliatone/go-crudgen/pkg/render/template/jinja"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "plain", err: errors.New("boom"), want: ExitGeneralError},
		{name: "explicit", err: &ExitError{Err: errors.New("bad"), Code: 7}, want: 7},
		{name: "wrapped explicit", err: fmt.Errorf("outer: %w", &ExitError{Err: errors.New("bad"), Code: ExitValidationError}), want: ExitValidationError},
		{name: "aborted", err: fmt.Errorf("new: %w", wizard.ErrAborted), want: ExitAborted},
		{name: "syntax", err: &jinja.SyntaxError{Msg: "unclosed tag"}, want: ExitTemplateError},
		{name: "unknown reference", err: fmt.Errorf("generator: User/dto: %w", &jinja.UnknownReferenceError{Name: "nope"}), want: ExitTemplateError},
		{name: "type mismatch", err: errors.Join(errors.New("other"), jinja.NewTypeMismatch("boolean", "x")), want: ExitTemplateError},
		{name: "markers", err: &generator.MarkerError{Target: "dto", Missing: []string{"@ApiProperty"}}, want: ExitValidationError},
		{name: "identifier", err: fmt.Errorf("%w: entity name %q", entity.ErrInvalidIdentifier, "1x"), want: ExitValidationError},
		{name: "duplicate property", err: entity.EntitySchema{Name: "User", Properties: []entity.PropertyDescriptor{{Name: "a", Type: "string"}, {Name: "a", Type: "string"}}}.Validate(), want: ExitValidationError},
		{name: "missing type", err: fmt.Errorf("schema: user.yaml: %w", entity.PropertyDescriptor{Name: "email"}.Validate()), want: ExitValidationError},
		{name: "duplicate entity", err: entity.Invalid("A", errors.New(`entity "A" declared at #1 and #2`)), want: ExitValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("inner")
	err := &ExitError{Err: inner, Code: ExitGeneralError}

	assert.Equal(t, "inner", err.Error())
	assert.ErrorIs(t, err, inner)
}
