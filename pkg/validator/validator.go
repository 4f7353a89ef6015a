package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

// FieldError is one failed rule on one field.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e FieldError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicate %s values", e.Field, e.Param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field, e.Param)
	case "datetime":
		return fmt.Sprintf("%s must match layout %s", e.Field, e.Param)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", e.Field)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Rule)
	}
}

// Errors lists every failed rule of one Validate call.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

type validator struct {
	validate *playground.Validate
}

// New returns a struct-tag validator. Field names in errors use the json tag.
// Each of timeTypes must be a struct embedding time.Time; it is validated as
// that time value, so "required" rejects the zero time.
func New(timeTypes ...interface{}) Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if len(timeTypes) > 0 {
		v.RegisterCustomTypeFunc(embeddedTime, timeTypes...)
	}
	return &validator{validate: v}
}

func embeddedTime(field reflect.Value) interface{} {
	if f := field.FieldByName("Time"); f.IsValid() {
		if t, ok := f.Interface().(time.Time); ok {
			return t
		}
	}
	return nil
}

func (v *validator) Validate(obj interface{}) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
