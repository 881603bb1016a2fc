package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pravaha-app/expense_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestGenerateAndParseJWT(t *testing.T) {
	userID := uuid.NewString()

	tokenString, err := utils.GenerateJWT(userID, testSecret, time.Hour, "pravaha-test")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := utils.ParseAndValidateJWT(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "pravaha-test", claims.Issuer)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tokenString, err := utils.GenerateJWT(uuid.NewString(), testSecret, time.Hour, "pravaha-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(tokenString, "a-completely-different-secret")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	tokenString, err := utils.GenerateJWT(uuid.NewString(), testSecret, -time.Minute, "pravaha-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(tokenString, testSecret)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.True(t, utils.CheckPasswordHash("correct-horse-battery", hash))
	assert.False(t, utils.CheckPasswordHash("wrong-password", hash))
}
