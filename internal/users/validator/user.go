package validator

import (
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"slotter/pkg/sanitizer"
	"slotter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	log.Info("User validator initialized successfully")
	return &UserValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// ValidateRegister normalizes the email in place before checking it.
func (v *UserValidator) ValidateRegister(req *model.RegisterRequest) error {
	req.Email = sanitizer.SanitizeEmail(req.Email)
	if err := validation.Struct(v.validate, req); err != nil {
		v.logger.Debug("Register request rejected", "error", err)
		return err
	}
	return nil
}

func (v *UserValidator) ValidateLogin(req *model.LoginRequest) error {
	req.Username = sanitizer.SanitizeUsername(req.Username)
	return validation.Struct(v.validate, req)
}
