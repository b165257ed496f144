// Package signer models the identity used to authorize frame actions on behalf of a viewer.
//
// An Identity is one of four variants: NoSigner, Pending, Impersonating or Approved.
// Only Impersonating and Approved carry key material and can sign.
package signer

import "errors"

// Status is the signer lifecycle state
type Status string

const (
	StatusNone          Status = "none"
	StatusPending       Status = "pending_approval"
	StatusImpersonating Status = "impersonating"
	StatusApproved      Status = "approved"
)

// ErrNoSigner is returned when an identity cannot sign
var ErrNoSigner = errors.New("signer: identity cannot sign")

// Identity is a signing identity variant
type Identity interface {
	Status() Status
	// FID is the numeric account identifier, 0 when unknown
	FID() int64
	// Key returns the signing key, nil for variants that cannot sign
	Key() Key
	isIdentity()
}

// NoSigner is the absence of any signing capability
type NoSigner struct{}

func (NoSigner) Status() Status { return StatusNone }
func (NoSigner) FID() int64     { return 0 }
func (NoSigner) Key() Key       { return nil }
func (NoSigner) isIdentity()    {}

// Pending is a signer key awaiting approval by the account owner.
// The key exists but must not be used yet.
type Pending struct {
	AccountID int64
	SignerKey Key
}

func (p Pending) Status() Status { return StatusPending }
func (p Pending) FID() int64     { return p.AccountID }
func (p Pending) Key() Key       { return nil }
func (p Pending) isIdentity()    {}

// Impersonating acts as AccountID without the account's approval.
// Frame backends that validate messages will reject its signatures.
type Impersonating struct {
	AccountID int64
	SignerKey Key
}

func (i Impersonating) Status() Status { return StatusImpersonating }
func (i Impersonating) FID() int64     { return i.AccountID }
func (i Impersonating) Key() Key       { return i.SignerKey }
func (i Impersonating) isIdentity()    {}

// Approved is a signer key the account owner has authorized
type Approved struct {
	AccountID int64
	SignerKey Key
}

func (a Approved) Status() Status { return StatusApproved }
func (a Approved) FID() int64     { return a.AccountID }
func (a Approved) Key() Key       { return a.SignerKey }
func (a Approved) isIdentity()    {}

// CanSign reports whether id carries usable key material
func CanSign(id Identity) bool {
	if id == nil {
		return false
	}
	switch id.Status() {
	case StatusImpersonating, StatusApproved:
		return id.Key() != nil
	}
	return false
}

// DevImpersonation builds the impersonating identity used by the public profile page.
//
// This is a development stand-in: the key is generated at process start and is not
// tied to any user's credentials. Do not use it to authorize anything that matters.
func DevImpersonation(fid int64, scheme string) (Impersonating, error) {
	key, err := GenerateKey(scheme)
	if err != nil {
		return Impersonating{}, err
	}
	return Impersonating{AccountID: fid, SignerKey: key}, nil
}
