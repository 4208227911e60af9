package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestGenerateAndValidate(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	tokenString, err := service.Generate(42, "Jane Doe", "jane@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := service.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "busline", claims.Issuer)
}

func TestValidate_InvalidToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	_, err := service.Validate("invalid.token.here")
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	tokenString, err := service.Generate(1, "A", "a@example.com")
	require.NoError(t, err)

	other := NewService("a-completely-different-secret", time.Hour)
	_, err = other.Validate(tokenString)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	service := NewService(testSecret, -time.Minute)

	// NewService clamps non-positive expiry, so sign with a short-lived
	// service instead.
	short := &Service{secret: testSecret, expiry: time.Millisecond}
	tokenString, err := short.Generate(1, "A", "a@example.com")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = service.Validate(tokenString)
	assert.Error(t, err)
}
