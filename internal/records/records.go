// Package records stores profiles and their text records.
package records

import (
	"context"
	"errors"

	"profile-frames/internal/types"
)

var (
	// ErrNotFound means the username is not registered
	ErrNotFound = errors.New("profile not found")
	// ErrUnknownKey means the text record key is not in the supported set
	ErrUnknownKey = errors.New("unknown text record key")
)

// Reader resolves a profile's text records
type Reader interface {
	TextRecords(ctx context.Context, username string) (types.TextRecords, error)
}

// Writer updates a profile's text records. An empty value deletes the record.
type Writer interface {
	SetTextRecord(ctx context.Context, username string, key types.TextRecordKey, value string) error
}

// Profiles resolves and registers usernames
type Profiles interface {
	Profile(ctx context.Context, username string) (types.Profile, error)
	RegisterProfile(ctx context.Context, p types.Profile) error
}

// Store is the full persistence surface
type Store interface {
	Reader
	Writer
	Profiles
	Close() error
}

func validateKey(key types.TextRecordKey) error {
	if !key.Valid() {
		return ErrUnknownKey
	}
	return nil
}

// Open connects to Postgres when databaseURL is set, otherwise returns an in-memory store.
// The second result names the backend.
func Open(ctx context.Context, databaseURL string) (Store, string, error) {
	if databaseURL == "" {
		return NewMemoryStore(), "memory", nil
	}
	pg, err := ConnectPostgres(ctx, databaseURL)
	if err != nil {
		return nil, "", err
	}
	return pg, "postgres", nil
}
