package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken returns a random token to mail to the user and the hash to
// store in its place.
func NewResetToken() (plain, hash string, err error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, HashToken(plain), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
