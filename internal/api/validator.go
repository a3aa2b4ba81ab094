package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bhargav676/intern/internal/apperr"
)

// requestValidator plugs go-playground/validator into echo.Context.Validate
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (r *requestValidator) Validate(i interface{}) error {
	err := r.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation(apperr.CodeValidationFailed, "Invalid request")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(apperr.CodeMissingParameter, "All fields are required")
	case "email":
		return apperr.Validation(apperr.CodeValidationFailed, "Invalid email format")
	case "min":
		return apperr.Validation(apperr.CodeValidationFailed,
			fmt.Sprintf("%s must be at least %s characters", capitalize(fe.Field()), fe.Param()))
	case "latitude", "longitude":
		return apperr.Validation(apperr.CodeValidationFailed, fe.Field()+" is out of range")
	default:
		return apperr.Validation(apperr.CodeValidationFailed, fe.Field()+" is invalid")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
