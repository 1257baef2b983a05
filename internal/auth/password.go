package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the original deployment; raising it invalidates no
// existing hashes but slows signup and login.
const bcryptCost = 10

// HashPassword generates a salted bcrypt hash for the given password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash validates the given cleartext password against a
// stored hash. Any failure, including a malformed digest, yields
// ErrMismatchedHashAndPassword; it never panics.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
