package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
	Role  string `json:"role" validate:"omitempty,oneof=admin student"`
	Score *int   `json:"score" validate:"omitempty,gte=0,lte=1000"`
}

func TestValidateStruct_OK(t *testing.T) {
	score := 10
	assert.NoError(t, ValidateStruct(signupPayload{Email: "a@b.io", Name: "Ana", Score: &score}))
}

func TestValidateStruct_ReportsJSONFieldNames(t *testing.T) {
	score := 1001
	err := ValidateStruct(signupPayload{Email: "nope", Name: "A", Role: "root", Score: &score})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	msg := err.Error()
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "name must be at least 2")
	assert.Contains(t, msg, "role must be one of [admin student]")
	assert.Contains(t, msg, "score must be <= 1000")
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(signupPayload{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "name is required")
}
