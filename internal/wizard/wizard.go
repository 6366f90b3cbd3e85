// Package wizard holds the typed input state of the interactive flows:
// registering a child, splitting a shortfall and buying ahead.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("childid", isChildID)
	_ = v.RegisterValidation("notfuture", isNotFuture)
	return v
}

// isChildID accepts identifiers that can be typed on a command line and
// stored as a JSON key.
func isChildID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id != "" && len(id) <= 64 && !strings.ContainsAny(id, "/\\ \t\r\n")
}

func isNotFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && !t.After(time.Now())
}

// check validates v and turns validator errors into readable messages.
func check(v any) error {
	return readable(validate.Struct(v))
}

// checkPartial validates only the named fields of v.
func checkPartial(v any, fields ...string) error {
	return readable(validate.StructPartial(v, fields...))
}

func readable(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, errors.New(formatFieldError(fe)))
	}
	return errors.Join(msgs...)
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "childid":
		return fmt.Sprintf("%s must be 1-64 characters without spaces or slashes", field)
	case "notfuture":
		return fmt.Sprintf("%s cannot be in the future", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Dialog is a form whose string inputs are parsed back into typed fields
// once it completes.
type Dialog struct {
	Form  *huh.Form
	apply []func() error
}

// Run shows the form and stores the answers.
func (d *Dialog) Run() error {
	if err := d.Form.Run(); err != nil {
		return err
	}
	return d.Apply()
}

// Apply parses the collected answers into the bound fields.
func (d *Dialog) Apply() error {
	for _, fn := range d.apply {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
