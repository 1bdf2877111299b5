// Package validator plugs go-playground/validator into echo.
package validator

import (
	"strconv"

	domainerrors "credsvc/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New returns a validator with required-struct checking enabled and the
// maxbytes tag registered.
func New() *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &CustomValidator{validate: validate}
}

// Validate checks struct tags and reports failures as validation errors.
func (v *CustomValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}

// maxBytes bounds the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}
