package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-frames/internal/analytics"
	"profile-frames/internal/cache"
	"profile-frames/internal/frames"
	"profile-frames/internal/signer"
)

type recordedEvent struct {
	name   string
	action analytics.ActionType
}

type recorder struct {
	events []recordedEvent
}

func (r *recorder) LogEventWithContext(_ context.Context, name string, action analytics.ActionType) {
	r.events = append(r.events, recordedEvent{name, action})
}

func (r *recorder) count(name string) int {
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func TestOpenModalEmitsOncePerCall(t *testing.T) {
	rec := &recorder{}
	s := NewSection(UIState{}, rec)
	ctx := context.Background()

	assert.Equal(t, ModalClosed, s.State().Modal())
	for i := 1; i <= 3; i++ {
		s.OpenModal(ctx)
		assert.True(t, s.State().ModalOpen)
		assert.Equal(t, i, rec.count(analytics.EventEditModalOpen))
	}
	assert.Equal(t, ModalOpen, s.State().Modal())
	assert.Equal(t, analytics.ActionRender, rec.events[0].action)
	assert.Zero(t, rec.count(analytics.EventEditModalClose))
}

func TestCloseModalEmitsOncePerCall(t *testing.T) {
	rec := &recorder{}
	s := NewSection(UIState{ModalOpen: true}, rec)
	ctx := context.Background()

	s.CloseModal(ctx)
	assert.False(t, s.State().ModalOpen)
	s.CloseModal(ctx)
	assert.False(t, s.State().ModalOpen)

	assert.Equal(t, 2, rec.count(analytics.EventEditModalClose))
	assert.Zero(t, rec.count(analytics.EventEditModalOpen))
}

func TestModalTransitionsFollowCallOrder(t *testing.T) {
	rec := &recorder{}
	s := NewSection(UIState{}, rec)
	ctx := context.Background()

	s.OpenModal(ctx)
	s.CloseModal(ctx)
	s.OpenModal(ctx)

	assert.Equal(t, ModalOpen, s.State().Modal())
	require.Len(t, rec.events, 3)
	assert.Equal(t, []string{
		analytics.EventEditModalOpen,
		analytics.EventEditModalClose,
		analytics.EventEditModalOpen,
	}, []string{rec.events[0].name, rec.events[1].name, rec.events[2].name})
}

func TestLoadErrorIsSticky(t *testing.T) {
	s := NewSection(UIState{}, nil)
	url := "https://example.com/widget"

	assert.True(t, s.Decide(url, false).Section)
	s.OnWidgetLoadError()
	s.OnWidgetLoadError()
	assert.True(t, s.State().ErrorLoadingFrame)
	assert.True(t, s.Decide(url, false).Empty())
	assert.True(t, s.Decide(url, true).Section)

	// modal operations do not clear it
	s.OpenModal(context.Background())
	s.CloseModal(context.Background())
	assert.True(t, s.State().ErrorLoadingFrame)
}

func TestOwnerFlagDoesNotBlockModalState(t *testing.T) {
	s := NewSection(UIState{}, nil)
	s.OpenModal(context.Background())

	d := s.Decide("https://example.com/widget", false)
	assert.True(t, s.State().ModalOpen)
	assert.False(t, d.Modal)
}

func TestDelegateConfig(t *testing.T) {
	s := NewSection(UIState{}, nil)
	id, err := signer.DevImpersonation(1, signer.SchemeEd25519)
	require.NoError(t, err)

	cfg := NewDelegate(s, DelegateParams{
		ConnectedAddress: "0xabc",
		SourceURL:        "https://example.com/widget",
		ProxyBaseURL:     "http://127.0.0.1:8080",
		Signer:           id,
	})

	assert.Equal(t, "/frames", cfg.FrameActionProxy)
	assert.Equal(t, "/frames", cfg.FrameGetProxy)
	assert.Equal(t, "https://example.com/widget", cfg.HomeframeURL)
	assert.Equal(t, "0xabc", cfg.ConnectedAddress)
	assert.Equal(t, frames.FallbackContext, cfg.FrameContext)
	assert.False(t, cfg.SignerState.HasSigner)
	assert.False(t, cfg.SignerState.IsLoadingSigner)
	assert.Equal(t, signer.StatusImpersonating, cfg.SignerState.Signer.Status())
	assert.NotNil(t, cfg.SignerState.SignFrameAction)

	assert.NotPanics(t, cfg.SignerState.OnSignerlessFramePress)
	assert.NotPanics(t, cfg.SignerState.Logout)
	assert.False(t, s.State().ErrorLoadingFrame)

	cfg.OnError(errors.New("boom"))
	assert.True(t, s.State().ErrorLoadingFrame)
}

func TestMountStoreLifecycle(t *testing.T) {
	mem := cache.NewMemory(100, 0)
	defer mem.Close()
	store := NewMountStore(mem, time.Minute)
	ctx := context.Background()

	m, err := store.Create(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, UIState{}, m.UI)

	_, err = store.Update(ctx, m.ID, func(m *Mount) error {
		m.UI.ModalOpen = true
		return nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.UI.ModalOpen)

	_, err = store.Update(ctx, m.ID, func(m *Mount) error {
		m.UI.ModalOpen = false
		return errors.New("abort")
	})
	require.Error(t, err)
	got, _ = store.Get(ctx, m.ID)
	assert.True(t, got.UI.ModalOpen)

	// a fresh mount starts clean
	fresh, err := store.Create(ctx, "alice", "")
	require.NoError(t, err)
	assert.NotEqual(t, m.ID, fresh.ID)
	assert.Equal(t, UIState{}, fresh.UI)

	_, err = store.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrMountNotFound)
	_, err = store.Get(ctx, "6f1c1d3e-1111-4a4a-9b9b-000000000000")
	assert.ErrorIs(t, err, ErrMountNotFound)
}

func TestMountBelongsTo(t *testing.T) {
	mem := cache.NewMemory(100, 0)
	defer mem.Close()
	store := NewMountStore(mem, time.Minute)

	m, err := store.Create(context.Background(), "alice", "0xAbCd000000000000000000000000000000000001")
	require.NoError(t, err)
	got, err := store.Get(context.Background(), m.ID)
	require.NoError(t, err)

	assert.True(t, got.BelongsTo("alice", "0xabcd000000000000000000000000000000000001"))
	assert.False(t, got.BelongsTo("alice", "0x2222222222222222222222222222222222222222"))
	assert.False(t, got.BelongsTo("alice", ""))
	assert.False(t, got.BelongsTo("bob", "0xabcd000000000000000000000000000000000001"))

	anon, err := store.Create(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.True(t, anon.BelongsTo("alice", ""))
	assert.False(t, anon.BelongsTo("alice", "0xabcd000000000000000000000000000000000001"))
}
