// Package passwords hashes and verifies account passwords. New hashes use
// the configured scheme; verification accepts any supported encoding, so
// switching schemes does not lock out existing accounts.
package passwords

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHash is returned when a stored hash is malformed or uses an
// unsupported scheme.
var ErrInvalidHash = errors.New("invalid password hash")

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("empty password")

// Hasher hashes passwords and checks candidates against stored hashes.
// Verify returns (false, nil) on a mismatch and a non-nil error only when the
// stored hash cannot be used.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// Scheme names accepted by New.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// New returns a Hasher that creates hashes with scheme and verifies hashes
// of every supported scheme.
func New(scheme string, bcryptCost int) (Hasher, error) {
	b := Bcrypt{Cost: bcryptCost}
	a := Argon2id{Params: DefaultArgon2idParams()}

	switch scheme {
	case SchemeBcrypt:
		return &multi{primary: b, bcrypt: b, argon2id: a}, nil
	case SchemeArgon2id:
		return &multi{primary: a, bcrypt: b, argon2id: a}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

type multi struct {
	primary  Hasher
	bcrypt   Bcrypt
	argon2id Argon2id
}

func (m *multi) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multi) Verify(encodedHash, password string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return m.argon2id.Verify(encodedHash, password)
	case strings.HasPrefix(encodedHash, "$2"):
		return m.bcrypt.Verify(encodedHash, password)
	default:
		return false, ErrInvalidHash
	}
}
