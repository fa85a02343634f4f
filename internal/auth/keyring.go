package auth

import (
	"sync"
)

// KeyRing verifies presented keys against a fixed set of bcrypt hashes.
// Successful verifications are cached by key so repeated requests do not
// pay the bcrypt cost again.
type KeyRing struct {
	hashes []string

	mu       sync.RWMutex
	verified map[string]struct{}
}

// NewKeyRing creates a key ring from configured hashes. Empty entries are
// ignored.
func NewKeyRing(hashes []string) *KeyRing {
	kr := &KeyRing{verified: make(map[string]struct{})}
	for _, h := range hashes {
		if h != "" {
			kr.hashes = append(kr.hashes, h)
		}
	}
	return kr
}

// Len returns the number of configured hashes.
func (kr *KeyRing) Len() int { return len(kr.hashes) }

// Verify reports whether apiKey matches any configured hash.
func (kr *KeyRing) Verify(apiKey string) bool {
	if !IsValidAPIKeyFormat(apiKey) {
		return false
	}

	kr.mu.RLock()
	_, ok := kr.verified[apiKey]
	kr.mu.RUnlock()
	if ok {
		return true
	}

	for _, h := range kr.hashes {
		if ValidateAPIKey(apiKey, h) {
			kr.mu.Lock()
			kr.verified[apiKey] = struct{}{}
			kr.mu.Unlock()
			return true
		}
	}
	return false
}
