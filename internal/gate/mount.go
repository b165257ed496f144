package gate

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"profile-frames/internal/cache"
	"profile-frames/internal/frames"
)

// ErrMountNotFound means the mount expired or never existed
var ErrMountNotFound = errors.New("section mount not found")

// Mount is one rendering of the frames section on a profile page for one viewer.
// Its state is discarded when the mount expires; a new page load creates a new mount.
type Mount struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Viewer    string        `json:"viewer"` // connected address, "" when disconnected
	UI        UIState       `json:"ui"`
	Frame     *frames.State `json:"frame,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// MountStore keeps mounts in a TTL cache.
// Updates to the same mount are serialized within this process.
type MountStore struct {
	backend cache.Backend
	ttl     time.Duration
	locks   [64]sync.Mutex
}

// NewMountStore creates a store whose mounts expire after ttl of inactivity
func NewMountStore(backend cache.Backend, ttl time.Duration) *MountStore {
	return &MountStore{backend: backend, ttl: ttl}
}

func mountKey(id string) string { return "mount:" + id }

// Create starts a new mount with initial state (modal closed, no error)
func (s *MountStore) Create(ctx context.Context, username, viewer string) (*Mount, error) {
	m := &Mount{
		ID:        uuid.NewString(),
		Username:  username,
		Viewer:    viewer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get loads a mount
func (s *MountStore) Get(ctx context.Context, id string) (*Mount, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMountNotFound
	}
	var m Mount
	found, err := cache.GetJSON(ctx, s.backend, mountKey(id), &m)
	if err != nil {
		return nil, fmt.Errorf("load mount: %w", err)
	}
	if !found {
		return nil, ErrMountNotFound
	}
	return &m, nil
}

// BelongsTo reports whether the mount was created for username as seen by viewer
func (m *Mount) BelongsTo(username, viewer string) bool {
	return m.Username == username && strings.EqualFold(m.Viewer, viewer)
}

// Update loads a mount, applies fn and saves the result.
// fn's error aborts without saving.
func (s *MountStore) Update(ctx context.Context, id string, fn func(*Mount) error) (*Mount, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MountStore) save(ctx context.Context, m *Mount) error {
	if err := cache.SetJSON(ctx, s.backend, mountKey(m.ID), m, s.ttl); err != nil {
		return fmt.Errorf("save mount: %w", err)
	}
	return nil
}

func (s *MountStore) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}
