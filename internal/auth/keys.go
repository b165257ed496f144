// Package auth holds the request-authentication helpers: key derivation, CSRF tokens
// and the signed viewer cookie.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes derived from the server secret
const (
	PurposeCSRF   = "csrf"
	PurposeViewer = "viewer-cookie"
)

// DeriveKey expands the server secret into a 32-byte key for one purpose, so a
// leaked CSRF key cannot forge viewer cookies and vice versa.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("derive %s key: empty secret", purpose)
	}
	r := hkdf.New(sha256.New, secret, nil, []byte("profile-frames/"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// RandomSecret returns a fresh secret for development runs without a configured one
func RandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return secret, nil
}
