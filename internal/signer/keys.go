package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Key schemes
const (
	SchemeEd25519 = "ed25519"
	SchemeSchnorr = "schnorr"
)

// Key signs frame action messages
type Key interface {
	Scheme() string
	// PublicKeyHex is the 0x-prefixed hex public key
	PublicKeyHex() string
	Sign(msg []byte) ([]byte, error)
	Verify(msg, sig []byte) bool
}

// GenerateKey creates a fresh random key for scheme
func GenerateKey(scheme string) (Key, error) {
	switch scheme {
	case "", SchemeEd25519:
		return GenerateEd25519Key()
	case SchemeSchnorr:
		return GenerateSchnorrKey()
	default:
		return nil, fmt.Errorf("unknown key scheme %q", scheme)
	}
}

// Ed25519Key is a Farcaster-style signer key
type Ed25519Key struct {
	priv ed25519.PrivateKey
}

// GenerateEd25519Key creates a random ed25519 key
func GenerateEd25519Key() (*Ed25519Key, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &Ed25519Key{priv: priv}, nil
}

// Ed25519KeyFromSeed builds a key from a 32-byte seed
func Ed25519KeyFromSeed(seed []byte) (*Ed25519Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Key{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (k *Ed25519Key) Scheme() string { return SchemeEd25519 }

func (k *Ed25519Key) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(k.priv.Public().(ed25519.PublicKey))
}

func (k *Ed25519Key) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, msg), nil
}

func (k *Ed25519Key) Verify(msg, sig []byte) bool {
	return ed25519.Verify(k.priv.Public().(ed25519.PublicKey), msg, sig)
}

// SchnorrKey is a secp256k1 BIP-340 key. Messages are hashed with SHA-256 before signing.
type SchnorrKey struct {
	priv *btcec.PrivateKey
}

// GenerateSchnorrKey creates a random secp256k1 key
func GenerateSchnorrKey() (*SchnorrKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &SchnorrKey{priv: priv}, nil
}

// SchnorrKeyFromHex parses a 32-byte hex private key
func SchnorrKeyFromHex(privHex string) (*SchnorrKey, error) {
	b, err := hex.DecodeString(privHex)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("invalid secp256k1 private key")
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return &SchnorrKey{priv: priv}, nil
}

func (k *SchnorrKey) Scheme() string { return SchemeSchnorr }

// PublicKeyHex returns the x-only public key
func (k *SchnorrKey) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(schnorr.SerializePubKey(k.priv.PubKey()))
}

func (k *SchnorrKey) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := schnorr.Sign(k.priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("schnorr sign: %w", err)
	}
	return sig.Serialize(), nil
}

func (k *SchnorrKey) Verify(msg, sigBytes []byte) bool {
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return sig.Verify(digest[:], k.priv.PubKey())
}
