package signer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanSignByVariant(t *testing.T) {
	key, err := GenerateEd25519Key()
	require.NoError(t, err)

	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"nil", nil, false},
		{"no signer", NoSigner{}, false},
		{"pending", Pending{AccountID: 3, SignerKey: key}, false},
		{"impersonating", Impersonating{AccountID: 1, SignerKey: key}, true},
		{"approved", Approved{AccountID: 2, SignerKey: key}, true},
		{"approved without key", Approved{AccountID: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSign(tt.id))
		})
	}
}

func TestDevImpersonationKeysDiffer(t *testing.T) {
	a, err := DevImpersonation(1, SchemeEd25519)
	require.NoError(t, err)
	b, err := DevImpersonation(1, SchemeEd25519)
	require.NoError(t, err)

	assert.Equal(t, StatusImpersonating, a.Status())
	assert.Equal(t, int64(1), a.FID())
	assert.NotEqual(t, a.Key().PublicKeyHex(), b.Key().PublicKeyHex())
	assert.NotEqual(t, "0x"+strings.Repeat("0", 64), a.Key().PublicKeyHex())

	_, err = DevImpersonation(1, "rsa")
	assert.Error(t, err)
}

func TestSignFrameActionRoundTrip(t *testing.T) {
	for _, scheme := range []string{SchemeEd25519, SchemeSchnorr} {
		t.Run(scheme, func(t *testing.T) {
			key, err := GenerateKey(scheme)
			require.NoError(t, err)
			id := Approved{AccountID: 42, SignerKey: key}

			action, err := SignFrameAction(context.Background(), id, ActionInput{
				URL:         "https://example.com/frame",
				ButtonIndex: 2,
				InputText:   "hello",
				Timestamp:   time.UnixMilli(1700000000000),
			})
			require.NoError(t, err)

			assert.Equal(t, int64(42), action.UntrustedData.FID)
			assert.Equal(t, 2, action.UntrustedData.ButtonIndex)
			assert.Equal(t, int64(1700000000000), action.UntrustedData.Timestamp)
			assert.True(t, strings.HasPrefix(action.UntrustedData.MessageHash, "0x"))

			ok, err := VerifySignedAction(action, key)
			require.NoError(t, err)
			assert.True(t, ok)

			other, err := GenerateKey(scheme)
			require.NoError(t, err)
			ok, err = VerifySignedAction(action, other)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSignFrameActionWithoutSigner(t *testing.T) {
	_, err := SignFrameAction(context.Background(), NoSigner{}, ActionInput{})
	assert.ErrorIs(t, err, ErrNoSigner)

	key, _ := GenerateEd25519Key()
	_, err = SignFrameAction(context.Background(), Pending{AccountID: 1, SignerKey: key}, ActionInput{})
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestSchnorrKeyFromHex(t *testing.T) {
	k, err := SchnorrKeyFromHex("edc90d06fee17615229c8526dc005d959e4af3bdc0b48c5776c951bcafedec85")
	require.NoError(t, err)
	assert.Equal(t, "0xbbde6a0e8847e1cdb2ba5ec021cc949eb3cef125b8304a748fe11c0407990eec", k.PublicKeyHex())

	_, err = SchnorrKeyFromHex("zz")
	assert.Error(t, err)
}
