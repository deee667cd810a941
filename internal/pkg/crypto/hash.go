// Package crypto provides password hashing and backup encryption for Task Flow.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Match is the outcome of verifying a password attempt against a stored value.
type Match int

const (
	// NoMatch means the attempt is wrong.
	NoMatch Match = iota

	// MatchHashed means the attempt matches the stored digest.
	MatchHashed

	// MatchLegacyPlaintext means the stored value is an unmigrated record
	// that matched the attempt and must be rewritten with Hash.
	MatchLegacyPlaintext
)

// String returns a readable name for logging.
func (m Match) String() string {
	switch m {
	case MatchHashed:
		return "hashed"
	case MatchLegacyPlaintext:
		return "legacy_plaintext"
	default:
		return "no_match"
	}
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns the stored form of plaintext.
	Hash(plaintext string) (string, error)

	// Verify compares an attempt with a stored value.
	Verify(stored, attempt string) Match
}

// SHA256Hasher renders passwords as unsalted lowercase hex SHA-256 digests.
// Same input always yields the same output.
type SHA256Hasher struct{}

// Hash implements PasswordHasher.
func (SHA256Hasher) Hash(plaintext string) (string, error) {
	return ComputeSHA256([]byte(plaintext)), nil
}

// Verify implements PasswordHasher.
func (SHA256Hasher) Verify(stored, attempt string) Match {
	digest := ComputeSHA256([]byte(attempt))
	if subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1 {
		return MatchHashed
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1 {
		return MatchLegacyPlaintext
	}
	return NoMatch
}

// BcryptHasher stores salted bcrypt hashes.
// Unsalted SHA-256 digests and plaintext values are both reported as legacy
// records so that they are upgraded on the next login.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a BcryptHasher, clamping cost into bcrypt's valid range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash implements PasswordHasher.
func (h BcryptHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(out), nil
}

// Verify implements PasswordHasher.
func (h BcryptHasher) Verify(stored, attempt string) Match {
	if isBcryptHash(stored) {
		if bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil {
			return MatchHashed
		}
		return NoMatch
	}
	if ValidateSHA256(stored) {
		if subtle.ConstantTimeCompare([]byte(ComputeSHA256([]byte(attempt))), []byte(stored)) == 1 {
			return MatchLegacyPlaintext
		}
		return NoMatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1 {
		return MatchLegacyPlaintext
	}
	return NoMatch
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// NewHasher returns the hasher named by algorithm ("sha256" or "bcrypt").
func NewHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch strings.ToLower(algorithm) {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", algorithm)
	}
}

// ComputeSHA256 computes the hex-encoded SHA-256 hash of a byte slice.
func ComputeSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ValidateSHA256 validates that a string is a valid lowercase SHA-256 hex hash.
func ValidateSHA256(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
