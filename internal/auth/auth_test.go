package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeySeparatesPurposes(t *testing.T) {
	secret := []byte("server secret")
	a, err := DeriveKey(secret, PurposeCSRF)
	require.NoError(t, err)
	b, err := DeriveKey(secret, PurposeViewer)
	require.NoError(t, err)
	again, err := DeriveKey(secret, PurposeCSRF)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)

	_, err = DeriveKey(nil, PurposeCSRF)
	assert.Error(t, err)
}

func TestCSRFToken(t *testing.T) {
	m := NewCSRFManager([]byte("k"))
	binding := Binding("0xabc", "alice")
	token := m.GenerateToken(binding)

	assert.True(t, m.ValidateToken(binding, token))
	assert.False(t, m.ValidateToken(Binding("0xabc", "bob"), token))
	assert.False(t, m.ValidateToken(binding, "garbage"))
	assert.False(t, m.ValidateToken(binding, "notanumber.sig"))
	assert.False(t, NewCSRFManager([]byte("other")).ValidateToken(binding, token))
}

func TestCSRFTokenExpires(t *testing.T) {
	m := NewCSRFManager([]byte("k"))
	issued := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return issued }
	token := m.GenerateToken("b")

	m.now = func() time.Time { return issued.Add(CSRFTokenMaxAge - time.Second) }
	assert.True(t, m.ValidateToken("b", token))
	m.now = func() time.Time { return issued.Add(CSRFTokenMaxAge + time.Second) }
	assert.False(t, m.ValidateToken("b", token))
}

func TestViewerCookie(t *testing.T) {
	s := NewViewerSigner([]byte("k"))
	value := s.Seal("0xABCDEF0123456789abcdef0123456789ABCDEF01")
	require.NotEmpty(t, value)

	addr, err := s.Open(value)
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", addr)

	assert.Empty(t, s.Seal("not an address"))

	_, err = s.Open("0x0000000000000000000000000000000000000001." + value[43:])
	assert.ErrorIs(t, err, ErrBadViewerCookie)
	_, err = s.Open("nodot")
	assert.ErrorIs(t, err, ErrBadViewerCookie)
	_, err = NewViewerSigner([]byte("other")).Open(value)
	assert.ErrorIs(t, err, ErrBadViewerCookie)
}
