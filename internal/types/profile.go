package types

import "strings"

// ProfileIdentity describes the profile being viewed and the viewer's relation to it.
// It is read-only for the lifetime of a page view.
type ProfileIdentity struct {
	ViewedUsername string `json:"viewed_username"`
	ViewedAddress  string `json:"viewed_address"`
	ViewerIsOwner  bool   `json:"viewer_is_owner"`
}

// Profile is a registered username and the address that owns it
type Profile struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

// NormalizeUsername lowercases and trims a username for lookups
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeAddress lowercases a 0x-prefixed hex address.
// Returns "" if the input is not a 20-byte hex address.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return ""
	}
	for _, c := range addr[2:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return ""
		}
	}
	return addr
}

// SameAddress reports whether two addresses refer to the same account.
// Invalid or empty addresses never match.
func SameAddress(a, b string) bool {
	na := NormalizeAddress(a)
	return na != "" && na == NormalizeAddress(b)
}
