package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const MinHashCost = 10

func HashPassword(password string, cost int) ([]byte, error) {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the stored hash. A malformed
// hash is an error; a plain mismatch is not.
func VerifyPassword(password string, hash []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare hash: %w", err)
}
