package validator

import (
	"errors"
	"fmt"

	"innkeeper/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type DealValidator struct {
	validate *validator.Validate
}

func NewDealValidator() *DealValidator {
	return &DealValidator{
		validate: validator.New(),
	}
}

func (v *DealValidator) Validate(deal *model.Deal) error {
	if err := v.validate.Struct(deal); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateUpdate checks the partial update struct. The StartDate/EndDate
// ordering of the merged result is re-checked by Validate after merging,
// since either end of the window may arrive alone.
func (v *DealValidator) ValidateUpdate(updates *model.DealUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", err.Tag()),
		})
	}
	return validationErrors
}
