package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

func TestValidateWidget(t *testing.T) {
	v := NewValidationUtil()

	assert.NoError(t, v.ValidateWidget(model.Widget{Name: "gear", OwnerID: "u1", Status: model.WidgetDraft}))

	err := v.ValidateWidget(model.Widget{OwnerID: "u1", Status: model.WidgetDraft})
	assert.True(t, errors.Is(err, echo_errors.ErrInvalidEntityData))

	err = v.ValidateWidget(model.Widget{Name: "gear", OwnerID: "u1", Status: "gone"})
	assert.True(t, errors.Is(err, echo_errors.ErrInvalidEntityData))
}

func TestValidateWidgetLike(t *testing.T) {
	v := NewValidationUtil()

	assert.NoError(t, v.ValidateWidgetLike(model.WidgetLike{WidgetID: "w1", UserID: "u1"}))
	assert.Error(t, v.ValidateWidgetLike(model.WidgetLike{WidgetID: "w1"}))
}
