package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor for newly stored credentials.
// Verification reads the cost out of the hash itself, so changing this
// only affects hashes written afterwards.
const DefaultHashCost = 14

// HashPassword hashes a cleartext password at DefaultHashCost.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultHashCost)
}

// HashPasswordCost hashes a cleartext password at an explicit work
// factor. Empty passwords are rejected before hashing; bcrypt itself
// would happily hash them.
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash checks the cleartext password against a stored
// hash. A mismatch comes back as ErrMismatchedHashAndPassword; anything
// else (a truncated or corrupt hash) passes through untouched.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptHasher implements PasswordAuthenticator over the package helpers.
// A zero Cost means DefaultHashCost.
type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) HashPassword(password string) (string, error) {
	cost := b.Cost
	if cost <= 0 {
		cost = DefaultHashCost
	}
	return HashPasswordCost(password, cost)
}

func (b BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = BcryptHasher{}
