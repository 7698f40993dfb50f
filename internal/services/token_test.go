package services

import (
	"testing"
	"verba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Password: "$2a$10$somehash"}

	token, err := MakeUserToken(user, TokenActivation)
	require.NoError(t, err)
	assert.NoError(t, CheckUserToken(user, TokenActivation, token))
}

func TestTokenPurposeMismatch(t *testing.T) {
	user := &models.User{ID: 7, Password: "$2a$10$somehash"}

	token, err := MakeUserToken(user, TokenActivation)
	require.NoError(t, err)
	assert.ErrorIs(t, CheckUserToken(user, TokenPasswordReset, token), ErrBadToken)
}

func TestTokenDiesWithPasswordChange(t *testing.T) {
	user := &models.User{ID: 7, Password: "$2a$10$somehash"}

	token, err := MakeUserToken(user, TokenPasswordReset)
	require.NoError(t, err)

	user.Password = "$2a$10$differenthash"
	assert.ErrorIs(t, CheckUserToken(user, TokenPasswordReset, token), ErrBadToken)
}

func TestTokenWrongUser(t *testing.T) {
	alice := &models.User{ID: 7, Password: "$2a$10$samehash"}
	bob := &models.User{ID: 8, Password: "$2a$10$samehash"}

	token, err := MakeUserToken(alice, TokenActivation)
	require.NoError(t, err)
	assert.ErrorIs(t, CheckUserToken(bob, TokenActivation, token), ErrBadToken)
}

func TestTokenGarbageInput(t *testing.T) {
	user := &models.User{ID: 7, Password: "$2a$10$somehash"}

	assert.ErrorIs(t, CheckUserToken(user, TokenActivation, "not-a-token"), ErrBadToken)
	assert.ErrorIs(t, CheckUserToken(user, TokenActivation, ""), ErrBadToken)
}
