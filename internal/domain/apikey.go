package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// MaxAPIKeysPerUser caps live keys per owner.
	MaxAPIKeysPerUser = 3

	// APIKeyPrefix marks plaintext tokens so they are recognisable in configs.
	APIKeyPrefix = "doodl_"

	apiKeyRandomBytes  = 32
	apiKeyDisplayChars = 8
)

// APIKey is a stored token. Only the hash of the plaintext is kept.
type APIKey struct {
	ID         string
	UserID     string
	KeyHash    string
	Prefix     string
	Name       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// GeneratedKey is returned exactly once, at creation.
type GeneratedKey struct {
	Plaintext string
	Prefix    string
	Hash      string
}

// GenerateAPIKey draws a new random token.
func GenerateAPIKey() (GeneratedKey, error) {
	buf := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return GeneratedKey{}, fmt.Errorf("failed to generate api key: %w", err)
	}
	secret := hex.EncodeToString(buf)
	plaintext := APIKeyPrefix + secret
	return GeneratedKey{
		Plaintext: plaintext,
		Prefix:    APIKeyPrefix + secret[:apiKeyDisplayChars],
		Hash:      HashAPIKey(plaintext),
	}, nil
}

// HashAPIKey returns the lowercase hex SHA-256 of token.
func HashAPIKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
