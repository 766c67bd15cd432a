package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type accountForm struct {
	Username string `validate:"required,username"`
	Size     string `validate:"required,size_label"`
	Note     string `validate:"not_blank"`
}

func TestCustomValidators(t *testing.T) {
	assert.NoError(t, ValidateStruct(&accountForm{Username: "clerk.one", Size: "XL", Note: "x"}))
	assert.NoError(t, ValidateStruct(&accountForm{Username: "abc", Size: "42 / 44", Note: "x"}))

	err := ValidateStruct(&accountForm{Username: "ab", Size: "XL", Note: "x"})
	assert.Error(t, err)

	err = ValidateStruct(&accountForm{Username: "has space", Size: "XL", Note: "x"})
	assert.Error(t, err)

	err = ValidateStruct(&accountForm{Username: "clerk", Size: "<b>", Note: "x"})
	assert.Error(t, err)

	err = ValidateStruct(&accountForm{Username: "clerk", Size: "S", Note: "   "})
	assert.Error(t, err)
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&accountForm{Username: "", Size: "S", Note: "x"})

	errs := GetValidationErrors(err)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "username", errs[0].Field)
		assert.Equal(t, "required", errs[0].Tag)
	}

	assert.Empty(t, GetValidationErrors(nil))
}
