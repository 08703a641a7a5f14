// Package validator wraps go-playground/validator with the custom tags
// used by the API request types.
package validator

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jrosariodev/cultural-center-api/internal/model"
)

var (
	global    *validator.Validate
	timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

// New builds a validator with the domain tags registered:
// "category" for the fixed event category list, "eventdate" for
// YYYY-MM-DD dates not in the past and "eventtime" for HH:MM clocks.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("eventdate", validateEventDate)
	_ = v.RegisterValidation("eventtime", validateEventTime)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateCategory(fl validator.FieldLevel) bool {
	return model.ValidCategory(fl.Field().String())
}

func validateEventDate(fl validator.FieldLevel) bool {
	t, err := time.Parse("2006-01-02", fl.Field().String())
	if err != nil {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return !t.Before(today)
}

func validateEventTime(fl validator.FieldLevel) bool {
	return timeRegex.MatchString(fl.Field().String())
}

// Validate checks a request struct and returns a single human-readable
// error for the first failing field, or nil.
func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		// Not a field failure: the input itself was unusable.
		return errors.New(ErrUnknownValidation)
	}
	if len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "email":
		msg = ErrInvalidFormat
	case "category":
		msg = "Unknown event category"
	case "eventdate":
		msg = "Date must be YYYY-MM-DD and not in the past"
	case "eventtime":
		msg = "Time must be HH:MM"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
