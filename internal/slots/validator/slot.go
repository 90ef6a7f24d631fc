package validator

import (
	apperrors "slotter/pkg/errors"
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"slotter/pkg/validation"
	"time"

	"github.com/go-playground/validator/v10"
)

type SlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSlotValidator(log *logger.Logger) *SlotValidator {
	log.Info("Slot validator initialized successfully")
	return &SlotValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// ValidateSlot checks the request and returns its start time in UTC.
func (v *SlotValidator) ValidateSlot(req *model.SlotRequest) (time.Time, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Slot request rejected", "error", err)
		return time.Time{}, err
	}
	return validation.Timestamp("start_time", req.StartTime)
}

// ValidateInterval checks the request and returns its bounds in UTC. A stop before
// the start is malformed; equal bounds are an empty interval.
func (v *SlotValidator) ValidateInterval(req *model.IntervalRequest) (time.Time, time.Time, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Interval request rejected", "error", err)
		return time.Time{}, time.Time{}, err
	}

	start, err := validation.Timestamp("interval_start", req.IntervalStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	stop, err := validation.Timestamp("interval_stop", req.IntervalStop)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if stop.Before(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("interval_stop must not be before interval_start").
			WithDetails(map[string]any{"field": "interval_stop"})
	}
	return start, stop, nil
}
