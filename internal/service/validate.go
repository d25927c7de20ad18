package service

import (
	"errors"

	"optika/internal/model"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the request validator with the custom mobile tag
// (11-digit local number starting 03).
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for a nil function or empty tag.
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return model.ValidMobile(fl.Field().String())
	})

	return v
}

// validationError converts a validator error into a domain validation
// failure naming the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "mobile" {
			return model.ErrInvalidPhone
		}
		return model.NewValidationError(model.ErrCodeInvalidRequest,
			"invalid field "+fe.Field()+": failed "+fe.Tag()+" check")
	}
	return model.NewValidationError(model.ErrCodeInvalidRequest, "invalid request")
}
