package signer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// NetworkMainnet identifies the production network in action payloads
const NetworkMainnet = 1

// CastID references the cast a frame was embedded in
type CastID struct {
	FID  int64  `json:"fid"`
	Hash string `json:"hash"`
}

// ActionInput describes one frame button press
type ActionInput struct {
	URL           string
	ButtonIndex   int
	InputText     string
	State         string
	Address       string
	TransactionID string
	CastID        CastID
	Timestamp     time.Time
}

// UntrustedData is the readable half of a frame action body
type UntrustedData struct {
	FID           int64  `json:"fid"`
	URL           string `json:"url"`
	MessageHash   string `json:"messageHash"`
	Timestamp     int64  `json:"timestamp"`
	Network       int    `json:"network"`
	ButtonIndex   int    `json:"buttonIndex"`
	InputText     string `json:"inputText,omitempty"`
	State         string `json:"state,omitempty"`
	Address       string `json:"address,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	CastID        CastID `json:"castId"`
}

// TrustedData carries the signed message envelope, hex encoded
type TrustedData struct {
	MessageBytes string `json:"messageBytes"`
}

// SignedAction is the POST body sent to a frame backend
type SignedAction struct {
	UntrustedData UntrustedData `json:"untrustedData"`
	TrustedData   TrustedData   `json:"trustedData"`
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	Hash      string          `json:"hash"`
	Scheme    string          `json:"scheme"`
	Signer    string          `json:"signer"`
	Signature string          `json:"signature"`
}

// SignFrameAction signs a frame action with the identity's key.
// Returns ErrNoSigner for identities without key material.
func SignFrameAction(ctx context.Context, id Identity, in ActionInput) (*SignedAction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !CanSign(id) {
		return nil, ErrNoSigner
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	data := UntrustedData{
		FID:           id.FID(),
		URL:           in.URL,
		Timestamp:     ts.UnixMilli(),
		Network:       NetworkMainnet,
		ButtonIndex:   in.ButtonIndex,
		InputText:     in.InputText,
		State:         in.State,
		Address:       in.Address,
		TransactionID: in.TransactionID,
		CastID:        in.CastID,
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal action data: %w", err)
	}
	sum := sha256.Sum256(raw)
	hash := "0x" + hex.EncodeToString(sum[:20])

	key := id.Key()
	sig, err := key.Sign(raw)
	if err != nil {
		return nil, fmt.Errorf("sign action: %w", err)
	}
	env, err := json.Marshal(envelope{
		Data:      raw,
		Hash:      hash,
		Scheme:    key.Scheme(),
		Signer:    key.PublicKeyHex(),
		Signature: "0x" + hex.EncodeToString(sig),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	data.MessageHash = hash
	return &SignedAction{
		UntrustedData: data,
		TrustedData:   TrustedData{MessageBytes: hex.EncodeToString(env)},
	}, nil
}

// VerifySignedAction checks the envelope signature against key
func VerifySignedAction(action *SignedAction, key Key) (bool, error) {
	raw, err := hex.DecodeString(action.TrustedData.MessageBytes)
	if err != nil {
		return false, fmt.Errorf("decode message bytes: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Signer != key.PublicKeyHex() || env.Scheme != key.Scheme() {
		return false, nil
	}
	if len(env.Signature) < 2 {
		return false, nil
	}
	sig, err := hex.DecodeString(env.Signature[2:])
	if err != nil {
		return false, nil
	}
	return key.Verify(env.Data, sig), nil
}
