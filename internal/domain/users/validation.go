package users

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterParams is the registration form. Passwords are limited to 72
// bytes because bcrypt ignores anything past that.
type RegisterParams struct {
	Username        string `validate:"required,max=80"`
	Password        string `validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// normalizeRegistration trims the username and checks field rules. The
// password is kept verbatim.
func normalizeRegistration(params RegisterParams) (RegisterParams, error) {
	params.Username = strings.TrimSpace(params.Username)

	if err := validate.Struct(params); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return params, toValidationError(fieldErrs[0])
		}
		return params, ValidationError{Message: err.Error()}
	}
	return params, nil
}

func toValidationError(fe validator.FieldError) ValidationError {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return ValidationError{Field: field, Message: "is required"}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	case "min":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at least %s characters", fe.Param())}
	case "maxbytes":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s bytes", fe.Param())}
	default:
		return ValidationError{Field: field, Message: "is invalid"}
	}
}
