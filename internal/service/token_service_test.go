package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "credloom-coordinator")
	userID := uuid.New()

	token, expiry, err := svc.Generate(userID, testBorrower)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, testBorrower, claims.Wallet)
}

func TestJWTTokenService_RejectsWrongSecret(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "credloom-coordinator")
	other := NewJWTTokenService("secret-b", time.Hour, "credloom-coordinator")

	token, _, err := svc.Generate(uuid.New(), testBorrower)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsExpired(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "credloom-coordinator")

	token, _, err := svc.Generate(uuid.New(), testBorrower)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsGarbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "credloom-coordinator")
	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}
