package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// ErrHashSaltNotSet mirrors ErrEncryptionKeyNotSet's shape for the other
// piece of privacy-sensitive configuration: an agency with no salt cannot
// have its fans' external identifiers hashed.
var ErrHashSaltNotSet = errors.New("agency hash salt not configured")

const pbkdf2Iterations = 100_000

// FanIDHasher turns an external fan identifier (a platform DM handle, an
// email, a customer ID from the agency's own billing system) into an
// opaque, non-reversible hash before it is ever persisted, per spec.md §6:
// "the core never stores or logs the raw identifier."
//
// The salt is stretched via PBKDF2-HMAC-SHA256 on every Hash call rather than
// HMAC'd directly, so that a leaked hash store cannot be dictionary-attacked
// against common handles/emails at HMAC speed.
type FanIDHasher struct{}

// NewFanIDHasher returns a stateless hasher; the salt is supplied per call
// since it is scoped to the agency, not to the process.
func NewFanIDHasher() *FanIDHasher {
	return &FanIDHasher{}
}

// Hash returns the hex-encoded HMAC-SHA256 of externalID, keyed by a
// PBKDF2-stretched form of saltHex. saltHex is the agency's
// Agency.HashSaltHex; an empty salt is refused rather than silently hashing
// with a zero key.
func (h *FanIDHasher) Hash(externalID, saltHex string) (string, error) {
	if saltHex == "" {
		return "", ErrHashSaltNotSet
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", err
	}

	key := pbkdf2.Key(salt, salt, pbkdf2Iterations, sha256.Size, sha256.New)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(externalID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether externalID hashes to want under saltHex, using a
// constant-time comparison.
func (h *FanIDHasher) Verify(externalID, saltHex, want string) (bool, error) {
	got, err := h.Hash(externalID, saltHex)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(got), []byte(want)), nil
}
