package records

import (
	"context"
	"fmt"
	"sync"

	"profile-frames/internal/types"
)

// MemoryStore keeps profiles in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]types.Profile
	records  map[string]types.TextRecords
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]types.Profile),
		records:  make(map[string]types.TextRecords),
	}
}

func (s *MemoryStore) Profile(ctx context.Context, username string) (types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[types.NormalizeUsername(username)]
	if !ok {
		return types.Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) RegisterProfile(ctx context.Context, p types.Profile) error {
	username := types.NormalizeUsername(p.Username)
	addr := types.NormalizeAddress(p.Address)
	if username == "" || addr == "" {
		return fmt.Errorf("register profile: invalid username or address")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[username] = types.Profile{Username: username, Address: addr}
	return nil
}

func (s *MemoryStore) TextRecords(ctx context.Context, username string) (types.TextRecords, error) {
	username = types.NormalizeUsername(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.profiles[username]; !ok {
		return nil, ErrNotFound
	}
	out := make(types.TextRecords, len(s.records[username]))
	for k, v := range s.records[username] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) SetTextRecord(ctx context.Context, username string, key types.TextRecordKey, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	username = types.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[username]; !ok {
		return ErrNotFound
	}
	if value == "" {
		delete(s.records[username], key)
		return nil
	}
	if s.records[username] == nil {
		s.records[username] = make(types.TextRecords)
	}
	s.records[username][key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }
