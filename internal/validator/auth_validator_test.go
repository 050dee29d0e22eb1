package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthValidator_ValidateCreateUser(t *testing.T) {
	v := NewAuthValidator()

	assert.NoError(t, v.ValidateCreateUser("buyer@acme.test", "correct-horse-battery"))

	assert.ErrorIs(t, v.ValidateCreateUser("", "correct-horse-battery"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateCreateUser("not-an-email", "correct-horse-battery"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateCreateUser("buyer@acme.test", "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, v.ValidateCreateUser("buyer@acme.test", "123456789012"), ErrWeakPassword)
}

func TestAuthValidator_ValidateLogin(t *testing.T) {
	v := NewAuthValidator()

	// ログインでは長さを見ない
	assert.NoError(t, v.ValidateLogin("buyer@acme.test", "x"))
	assert.ErrorIs(t, v.ValidateLogin("buyer@acme.test", ""), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin("buyer at acme", "x"), ErrInvalidInput)
}
