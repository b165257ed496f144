package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"profile-frames/internal/types"
)

// ViewerCookieName holds the signed connected address of the viewer
const ViewerCookieName = "pf_viewer"

// ErrBadViewerCookie is returned for tampered or malformed cookie values
var ErrBadViewerCookie = errors.New("invalid viewer cookie")

// ViewerSigner seals and opens viewer cookie values
type ViewerSigner struct {
	key []byte
}

// NewViewerSigner creates a signer using key
func NewViewerSigner(key []byte) *ViewerSigner {
	return &ViewerSigner{key: key}
}

// Seal returns the cookie value for address. The address is normalized first;
// an invalid address yields "".
func (s *ViewerSigner) Seal(address string) string {
	addr := types.NormalizeAddress(address)
	if addr == "" {
		return ""
	}
	return addr + "." + s.mac(addr)
}

// Open verifies a cookie value and returns the address it carries
func (s *ViewerSigner) Open(value string) (string, error) {
	addr, sig, ok := strings.Cut(value, ".")
	if !ok || types.NormalizeAddress(addr) != addr {
		return "", ErrBadViewerCookie
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(addr))) {
		return "", ErrBadViewerCookie
	}
	return addr, nil
}

func (s *ViewerSigner) mac(addr string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(addr))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
