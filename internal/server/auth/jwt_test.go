package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("super-secret"), time.Hour)

	tok, exp, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	got, err := m.UserID(tok)
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}
	if got != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", got, "user-123")
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager([]byte("k"), time.Hour).WithClock(func() time.Time { return fixed })

	a, _, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, _, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatal("two tokens issued at the same instant must differ")
	}
}

func TestUserID_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager([]byte("secret"), time.Minute).WithClock(func() time.Time { return issuedAt })

	tok, _, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	later := m.WithClock(func() time.Time { return issuedAt.Add(2 * time.Minute) })
	if _, err := later.UserID(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}

	if _, err := m.UserID(tok); err != nil {
		t.Fatalf("token must still be valid at issue time: %v", err)
	}
}

func TestUserID_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager([]byte("right-secret"), time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenManager([]byte("wrong-secret"), time.Hour).UserID(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUserID_MalformedString(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("k"), time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		if _, err := m.UserID(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("%q: expected common.ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestUserID_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenManager([]byte("k"), time.Hour).UserID(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUserID_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	m := NewTokenManager(secret, time.Hour)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.UserID(noExp); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing exp: expected common.ErrInvalidToken, got %v", err)
	}

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.UserID(noUser); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing uid: expected common.ErrInvalidToken, got %v", err)
	}
}
