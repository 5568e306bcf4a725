// Package auth issues and verifies the signed session tokens handed to
// clients. A token is an HS256 JWT carrying the account id, an absolute
// expiry and a unique token id, so two tokens are never byte-identical.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Claims is the token payload: the registered claims plus the account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenManager signs and verifies session tokens with a shared secret.
type TokenManager struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

func NewTokenManager(secretKey []byte, validity time.Duration) *TokenManager {
	return &TokenManager{secretKey: secretKey, validity: validity, now: time.Now}
}

// WithClock returns a copy of m reading the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// Issue signs a new token for userID valid for the configured duration.
// It returns the token and its expiry instant.
func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// UserID verifies the signature and expiry of tokenString and returns the
// account id it carries. Expired tokens yield common.ErrTokenExpired; every
// other failure yields common.ErrInvalidToken.
func (m *TokenManager) UserID(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
