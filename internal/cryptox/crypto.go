// Package cryptox implements password hashing for the auth service.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of the random per-user salt.
const SaltSize = 16

// HashPassword derives an argon2id hash of password with salt.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// NewPasswordHash generates a fresh salt and returns it together with the
// hash of password.
func NewPasswordHash(password []byte) (salt []byte, hash []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	return salt, HashPassword(password, salt)
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(password []byte, salt []byte, hash []byte) bool {
	candidate := HashPassword(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
