package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSRFTokenMaxAge bounds how long an edit form stays submittable
const CSRFTokenMaxAge = 30 * time.Minute

// CSRFManager issues and checks form tokens bound to a viewer and a profile
type CSRFManager struct {
	secret []byte
	now    func() time.Time
}

// NewCSRFManager creates a manager signing with secret
func NewCSRFManager(secret []byte) *CSRFManager {
	return &CSRFManager{secret: secret, now: time.Now}
}

// GenerateToken creates a token for binding (typically "viewer|username").
// Format: timestamp.signature
func (m *CSRFManager) GenerateToken(binding string) string {
	ts := m.now().Unix()
	return fmt.Sprintf("%d.%s", ts, m.sign(binding, ts))
}

// ValidateToken checks that token was issued for binding and has not expired
func (m *CSRFManager) ValidateToken(binding, token string) bool {
	tsPart, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return false
	}
	age := m.now().Unix() - ts
	if age < 0 || age > int64(CSRFTokenMaxAge.Seconds()) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(m.sign(binding, ts)))
}

func (m *CSRFManager) sign(binding string, ts int64) string {
	h := hmac.New(sha256.New, m.secret)
	fmt.Fprintf(h, "%s.%d", binding, ts)
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// Binding joins the parts a token is tied to
func Binding(parts ...string) string {
	return strings.Join(parts, "|")
}
