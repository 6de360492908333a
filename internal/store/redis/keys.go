package redis

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// KeyPrefixMetadata is the prefix for cached extraction results
	KeyPrefixMetadata = "doodl:meta:"

	urlDigestChars = 16
)

// MetadataKey returns the Redis key for the metadata of rawURL.
// URLs are hashed so arbitrary lengths and characters map to short keys.
func MetadataKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return KeyPrefixMetadata + hex.EncodeToString(sum[:])[:urlDigestChars]
}
