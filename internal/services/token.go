package services

import (
	"errors"
	"os"
	"time"
	"verba/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose never validates for another.
const (
	TokenActivation    = "activation"
	TokenPasswordReset = "password-reset"
)

const activationTokenTTL = 72 * time.Hour
const resetTokenTTL = 2 * time.Hour

var ErrBadToken = errors.New("token is invalid or expired")

// tokenKey mixes the site secret with the user's current password hash, so
// every outstanding token dies the moment the password changes.
func tokenKey(user *models.User) []byte {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		secret = os.Getenv("SESSION_SECRET")
	}
	if secret == "" {
		secret = "secret_key_change_me"
	}
	return []byte(secret + user.Password)
}

// MakeUserToken signs a single-use token bound to the user's credentials.
func MakeUserToken(user *models.User, purpose string) (string, error) {
	ttl := activationTokenTTL
	if purpose == TokenPasswordReset {
		ttl = resetTokenTTL
	}

	claims := jwt.MapClaims{
		"sub":     user.ID,
		"purpose": purpose,
		"exp":     jwt.NewNumericDate(time.Now().Add(ttl)),
		"iat":     jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenKey(user))
}

// CheckUserToken verifies signature, expiry and purpose against the user's
// current state. Any failure collapses into ErrBadToken: the caller shows
// "confirmation failed", never the reason.
func CheckUserToken(user *models.User, purpose, token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return tokenKey(user), nil
	})
	if err != nil || !parsed.Valid {
		return ErrBadToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ErrBadToken
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return ErrBadToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || uint(sub) != user.ID {
		return ErrBadToken
	}
	return nil
}
