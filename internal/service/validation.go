package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/clinic-agenda-api/internal/models"
	"github.com/noah-isme/clinic-agenda-api/pkg/layout"
)

// NewValidator returns a validator with the agenda tags registered:
// clock (strict HH:MM), appointment_status and rrule.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the agenda tags to an existing validator.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := layout.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("appointment_status", func(fl validator.FieldLevel) bool {
		return models.AppointmentStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("rrule", func(fl validator.FieldLevel) bool {
		return ValidRRule(fl.Field().String())
	})
}
