// Package cache stores serialized rubric evaluations keyed by prompt text so
// repeat analyses of identical prompts skip the oracle.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for evaluation caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from prompt text. The text is hashed so arbitrary
// prompt content never leaks into filenames.
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "promptlens:v1:" + hex.EncodeToString(hash[:])
}
