package dto

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError_FieldErrors(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(RegisterRequest{Email: "nope", Password: "short", Role: "root"})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)

	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 3)
	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "email must be a valid email address", fields[0].Message)
	assert.Equal(t, "password must be at least 8 characters long", fields[1].Message)
	assert.Equal(t, "role must be one of: admin, advisor, student", fields[2].Message)
}

func TestHandleValidationError_JSON(t *testing.T) {
	var req RegisterRequest
	err := json.Unmarshal([]byte(`{"email": 5}`), &req)
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "Invalid field type", detail.Message)
	assert.Equal(t, "email", detail.Field)
}
