// Package auth implements the credential store and the phantom token pair.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The stored format is "salt:hex(derivedKey)" so no
// separate salt column is needed.
const (
	saltBytes  = 16
	iterations = 100000
	keyLength  = 64
)

// HashPassword derives a salted PBKDF2-SHA512 hash of password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyLength, sha512.New)
	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword re-derives with the stored salt and compares in constant
// time. Fails closed: any malformed hash yields false, never an error.
func VerifyPassword(password, stored string) bool {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[0]), iterations, keyLength, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
