package validator

import (
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"slotter/pkg/sanitizer"
	"slotter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	log.Info("Booking validator initialized successfully")
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// ValidateBooking sanitizes the description in place and then validates it, so a
// description of only whitespace counts as missing.
func (v *BookingValidator) ValidateBooking(req *model.BookingRequest) error {
	req.Description = sanitizer.SanitizeDescription(req.Description)
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Booking request rejected", "error", err)
		return err
	}
	return nil
}
