package models

import (
	"crypto/subtle"
	"database/sql"
	"time"
)

// SessionToken is the account's current session: either no session at all,
// or exactly one active signed token. The zero value is NoSession.
type SessionToken struct {
	value  string
	active bool
}

// NoSession returns the empty session state.
func NoSession() SessionToken {
	return SessionToken{}
}

// ActiveToken returns a session state holding token.
func ActiveToken(token string) SessionToken {
	return SessionToken{value: token, active: true}
}

// IsActive reports whether a token is stored.
func (t SessionToken) IsActive() bool {
	return t.active
}

// Value returns the stored token and whether there is one.
func (t SessionToken) Value() (string, bool) {
	return t.value, t.active
}

// Matches reports whether token is exactly the stored one. NoSession never
// matches. The comparison runs in constant time.
func (t SessionToken) Matches(token string) bool {
	if !t.active {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.value), []byte(token)) == 1
}

// NullString maps the state onto a nullable column.
func (t SessionToken) NullString() sql.NullString {
	return sql.NullString{String: t.value, Valid: t.active}
}

// SessionTokenFromNull is the inverse of NullString.
func SessionTokenFromNull(ns sql.NullString) SessionToken {
	if !ns.Valid {
		return NoSession()
	}
	return ActiveToken(ns.String)
}

// Account is the credential store record. Token is the only source of truth
// for whether the account has a live session; one account holds at most one.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Token        SessionToken
	CreatedAt    time.Time
}

// View returns the public projection of the account.
func (a *Account) View() AccountView {
	return AccountView{ID: a.ID, Username: a.Username}
}

// AccountView is what callers outside the server get to see of an account.
type AccountView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
