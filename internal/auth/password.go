package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password modes accepted by NewPasswords.
const (
	PasswordPlain  = "plain"
	PasswordBcrypt = "bcrypt"
)

// Passwords hashes and checks user passwords.
type Passwords interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// NewPasswords returns the Passwords for mode. Plain keeps passwords as
// entered, matching existing stored users; bcrypt must be opted into.
func NewPasswords(mode string) (Passwords, error) {
	switch mode {
	case PasswordPlain, "":
		return PlainPasswords{}, nil
	case PasswordBcrypt:
		return BcryptPasswords{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}

// PlainPasswords stores passwords unchanged.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) { return plain, nil }

func (PlainPasswords) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptPasswords) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
