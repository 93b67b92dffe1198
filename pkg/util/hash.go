package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt cost parameter for gateway keys.
const BcryptCost = 12

// HashKeyBcrypt returns a bcrypt hash of a gateway API key. The result
// already includes its salt.
func HashKeyBcrypt(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareKeyBcrypt returns nil if key matches the bcrypt hash.
func CompareKeyBcrypt(hashedKey, key string) error {
	if hashedKey == "" || key == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
}
