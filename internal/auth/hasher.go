// Package auth supplies the credential collaborator: the ledger core treats
// password material as opaque and delegates hashing and verification here.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PasswordHasher is what the auth service depends on; swap it out to change
// the credential scheme without touching the ledger.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

const (
	pbkdf2Iterations = 100_000
	saltLen          = 16
	keyLen           = 32
)

// PBKDF2Hasher stores credentials as "salt$hash" with PBKDF2-SHA256.
type PBKDF2Hasher struct{}

func NewPBKDF2Hasher() PBKDF2Hasher {
	return PBKDF2Hasher{}
}

func (PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLen, sha256.New)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(hash), nil
}

func (PBKDF2Hasher) Verify(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}

	saltStr, hashStr, ok := splitStored(stored)
	if !ok {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltStr)
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(hashStr)
	if err != nil {
		return false
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(hash, expected) == 1
}

func splitStored(stored string) (salt, hash string, ok bool) {
	for i := 0; i < len(stored); i++ {
		if stored[i] == '$' {
			return stored[:i], stored[i+1:], true
		}
	}
	return "", "", false
}
