package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var fieldCaser = cases.Title(language.English)

func formatFieldName(s string) string {
	return fieldCaser.String(strings.ReplaceAll(s, "_", " "))
}

// MapValidationError turns the first validator.v10 failure into a
// user-facing AppError; anything else becomes a generic invalid-input.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		field := formatFieldName(errs[0].Field())
		if errs[0].Tag() == "required" {
			return RequiredField(field)
		}
		return InvalidField(field)
	}

	return New(CodeInvalidInput, "Invalid input", http.StatusBadRequest)
}
