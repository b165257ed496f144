// Package profile resolves which profile a page shows and whether the viewer owns it.
package profile

import (
	"context"
	"errors"
	"fmt"

	"profile-frames/internal/records"
	"profile-frames/internal/types"
)

// ErrUnknownProfile means no profile is registered under the username
var ErrUnknownProfile = errors.New("unknown profile")

// Page is everything the profile page needs about the viewed profile
type Page struct {
	Identity types.ProfileIdentity
	Records  types.TextRecords
}

// SourceURL is the frame URL configured on the profile, or ""
func (p Page) SourceURL() string {
	return p.Records.FrameURL()
}

// Provider answers identity questions against a profile store
type Provider struct {
	profiles records.Profiles
	reader   records.Reader
}

// NewProvider creates a provider. reader is typically a records.CachedStore.
func NewProvider(profiles records.Profiles, reader records.Reader) *Provider {
	return &Provider{profiles: profiles, reader: reader}
}

// Resolve returns the identity of the viewed profile relative to viewerAddress.
// An empty viewerAddress means no wallet is connected and the viewer never owns the profile.
func (p *Provider) Resolve(ctx context.Context, username, viewerAddress string) (types.ProfileIdentity, error) {
	prof, err := p.profiles.Profile(ctx, types.NormalizeUsername(username))
	if errors.Is(err, records.ErrNotFound) {
		return types.ProfileIdentity{}, ErrUnknownProfile
	}
	if err != nil {
		return types.ProfileIdentity{}, fmt.Errorf("resolve profile %q: %w", username, err)
	}
	return types.ProfileIdentity{
		ViewedUsername: prof.Username,
		ViewedAddress:  prof.Address,
		ViewerIsOwner:  types.SameAddress(viewerAddress, prof.Address),
	}, nil
}

// Page resolves the identity and loads the profile's text records
func (p *Provider) Page(ctx context.Context, username, viewerAddress string) (Page, error) {
	id, err := p.Resolve(ctx, username, viewerAddress)
	if err != nil {
		return Page{}, err
	}
	recs, err := p.reader.TextRecords(ctx, id.ViewedUsername)
	if errors.Is(err, records.ErrNotFound) {
		return Page{}, ErrUnknownProfile
	}
	if err != nil {
		return Page{}, fmt.Errorf("load text records for %q: %w", id.ViewedUsername, err)
	}
	return Page{Identity: id, Records: recs}, nil
}
