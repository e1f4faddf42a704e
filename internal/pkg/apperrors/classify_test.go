package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors_ValidationFailure(t *testing.T) {
	vf := NewValidationFailure(
		Issue{Path: []string{"email"}, Message: "Invalid email"},
		Issue{Path: []string{"password"}, Message: "Too short"},
	)

	fields, ok := FieldErrors(vf)

	require.True(t, ok)
	assert.Equal(t, map[string]string{"email": "Invalid email", "password": "Too short"}, fields)
	assert.Equal(t, "Invalid email", UserMessage(vf))
}

func TestFieldErrors_GenericFailure(t *testing.T) {
	err := errors.New("connection refused")

	fields, ok := FieldErrors(err)

	assert.False(t, ok)
	assert.Nil(t, fields, "для не-валидационной ошибки карта отсутствует, а не пуста")
	assert.Equal(t, GenericUserMessage, UserMessage(err))
}

func TestFieldErrors_FirstMessageWins(t *testing.T) {
	vf := NewValidationFailure(
		Issue{Path: []string{"password"}, Message: "Too short"},
		Issue{Path: []string{"password"}, Message: "Needs a digit"},
		Issue{Path: []string{"address", "city"}, Message: "Required"},
		Issue{Path: []string{"address", "city"}, Message: "Unknown city"},
	)

	fields, ok := FieldErrors(vf)

	require.True(t, ok)
	assert.Equal(t, map[string]string{"password": "Too short", "address.city": "Required"}, fields)
}

func TestFieldErrors_EmptyIssues(t *testing.T) {
	vf := NewValidationFailure()

	fields, ok := FieldErrors(vf)

	assert.False(t, ok)
	assert.Nil(t, fields)
	assert.Equal(t, EmptyValidationMessage, UserMessage(vf))
}

func TestFieldErrors_WrappedValidationFailure(t *testing.T) {
	vf := NewValidationFailure(Issue{Path: []string{"name"}, Message: "Name is required"})
	err := fmt.Errorf("sign up: %w", vf)

	fields, ok := FieldErrors(err)

	require.True(t, ok)
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Name is required", UserMessage(err))
}

func TestFieldErrors_RootLevelIssue(t *testing.T) {
	vf := NewValidationFailure(Issue{Message: "Body must be an object"})

	fields, ok := FieldErrors(vf)

	require.True(t, ok)
	assert.Equal(t, map[string]string{"": "Body must be an object"}, fields)
}

func TestFieldErrors_Nil(t *testing.T) {
	fields, ok := FieldErrors(nil)

	assert.False(t, ok)
	assert.Nil(t, fields)
	assert.Equal(t, GenericUserMessage, UserMessage(nil))
}

// TestUserMessage_NeverLeaksInternalText: текст внутренней ошибки, её причины
// и стек не попадают в сообщение пользователю.
func TestUserMessage_NeverLeaksInternalText(t *testing.T) {
	secret := "pq: password authentication failed for user \"admin\" at 10.0.0.7:5432"
	inputs := []error{
		errors.New(secret),
		fmt.Errorf("store: %w", errors.New(secret)),
		NewOpaqueFailure(ErrStoreQuery, secret, errors.New(secret)),
		Capture(errors.New(secret)),
		Capture(secret),
	}

	for i, err := range inputs {
		msg := UserMessage(err)
		assert.Equal(t, GenericUserMessage, msg, "input %d", i)
		assert.NotContains(t, msg, "password", "input %d", i)
		assert.NotContains(t, msg, "10.0.0.7", "input %d", i)
	}
}
