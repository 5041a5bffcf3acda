package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

var webURLPattern = regexp.MustCompile(`^https?://.+`)

// newValidator returns a validator that reports json field names and knows the
// weburl tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return webURLPattern.MatchString(fl.Field().String())
	})
	return v
}

// messageFor maps a failed rule to the message shown under the field.
func messageFor(field, tag, param string) string {
	switch tag {
	case "required":
		if field == "original_url" {
			return "URL is required"
		}
		return "This field is required"
	case "weburl":
		return "Please enter a valid URL"
	case "min":
		return "Minimum " + param + " characters"
	case "max":
		return "Maximum " + param + " characters"
	case "alphanum":
		return "Only letters and numbers allowed"
	default:
		return "Invalid value"
	}
}

// validateCreate applies the create screen rules and returns one error per
// offending field, in field order. An empty result means the request may be sent.
func validateCreate(v *validator.Validate, req models.CreateLinkRequest) []customerrors.ValidationError {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []customerrors.ValidationError{{Message: err.Error()}}
	}

	out := make([]customerrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, customerrors.ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}
