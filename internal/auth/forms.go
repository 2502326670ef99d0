package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateLogin checks required login fields before the API is called.
func ValidateLogin(req api.LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("login form invalid: %w", err)
	}
	return nil
}

// ValidateRegister checks registration fields before the API is called.
func ValidateRegister(req api.RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("registration form invalid: %w", err)
	}
	return nil
}
