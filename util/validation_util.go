// util/validation_util.go

package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateWidget(widget model.Widget) error {
	if err := v.validate.Struct(widget); err != nil {
		return fmt.Errorf("%w: %v", echo_errors.ErrInvalidEntityData, err)
	}
	return nil
}

func (v *ValidationUtil) ValidateWidgetLike(like model.WidgetLike) error {
	if err := v.validate.Struct(like); err != nil {
		return fmt.Errorf("%w: %v", echo_errors.ErrInvalidEntityData, err)
	}
	return nil
}
