package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"elysion/internal/model"
)

var global *validator.Validate

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldNotAllowed    = "Field has unsupported value"
	ErrFieldNotUnique     = "Field contains duplicates"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

// New builds a validator that reports fields by their json name and knows
// the "workshop" tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("workshop", validateWorkshop)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validateWorkshop(fl validator.FieldLevel) bool {
	return model.Workshop(fl.Field().String()).Valid()
}

// Validate reports the first failing field as a single error.
func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

// Messages maps a field name to its failure message. A "field.tag" key
// overrides the plain "field" key for that tag.
type Messages map[string]string

func (m Messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return genericMessage(tag)
}

// Fields validates structure and returns every failing field with its
// message. An empty map means the structure is valid.
func Fields(ctx context.Context, structure any, messages Messages) map[string]string {
	out := make(map[string]string)
	err := Validator().StructCtx(ctx, structure)
	if err == nil {
		return out
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range vErrors {
		field := fieldName(fe.Field())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messages.lookup(field, fe.Tag())
	}
	return out
}

// fieldName strips the element index that dive adds, so
// "workshopPreference[3]" reports as "workshopPreference".
func fieldName(field string) string {
	name, _, _ := strings.Cut(field, "[")
	return name
}

func genericMessage(tag string) string {
	switch tag {
	case "required":
		return ErrFieldRequired
	case "max":
		return ErrFieldExceedsMaxLen
	case "min":
		return ErrFieldBelowMinLen
	case "email":
		return ErrInvalidFormat
	case "oneof", "workshop":
		return ErrFieldNotAllowed
	case "unique":
		return ErrFieldNotUnique
	default:
		return ErrUnknownValidation
	}
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return err
	}
	ve := vErrors[0]
	return errors.New(genericMessage(ve.Tag()) + ": " + fieldName(ve.Field()))
}
