package auth

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password the intranet accepts.
const MinPasswordLength = 6

// ErrPasswordTooShort is returned by ValidatePassword. Its text is shown to
// the user as is.
var ErrPasswordTooShort = errors.New("A senha deve ter pelo menos 6 caracteres.")

// ValidatePassword applies the intranet password rule, counted in runes so
// accented passwords are not penalised.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword hashes a directory password. An out-of-range cost (a zero
// value from config, typically) falls back to bcrypt's default.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches the stored hash; any
// mismatch or malformed hash is an error.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
