package records

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-frames/internal/cache"
	"profile-frames/internal/types"
)

const aliceAddr = "0x1111111111111111111111111111111111111111"

func seeded(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.RegisterProfile(context.Background(), types.Profile{Username: "Alice", Address: aliceAddr}))
	return s
}

func TestMemoryStoreRecords(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	recs, err := s.TextRecords(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, recs.FrameURL())

	require.NoError(t, s.SetTextRecord(ctx, "ALICE", types.TextRecordFrame, "https://example.com/widget"))
	recs, err = s.TextRecords(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/widget", recs.FrameURL())

	require.NoError(t, s.SetTextRecord(ctx, "alice", types.TextRecordFrame, ""))
	recs, _ = s.TextRecords(ctx, "alice")
	_, present := recs[types.TextRecordFrame]
	assert.False(t, present)

	assert.ErrorIs(t, s.SetTextRecord(ctx, "alice", "favorite.color", "blue"), ErrUnknownKey)
	assert.ErrorIs(t, s.SetTextRecord(ctx, "bob", types.TextRecordFrame, "x"), ErrNotFound)
	_, err = s.TextRecords(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsBadAddress(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.RegisterProfile(context.Background(), types.Profile{Username: "x", Address: "not-an-address"}))
}

type countingStore struct {
	*MemoryStore
	reads atomic.Int32
	gate  chan struct{}
}

func (c *countingStore) TextRecords(ctx context.Context, username string) (types.TextRecords, error) {
	c.reads.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.MemoryStore.TextRecords(ctx, username)
}

type hitCounter struct{ hits, misses atomic.Int32 }

func (h *hitCounter) CacheHit()  { h.hits.Add(1) }
func (h *hitCounter) CacheMiss() { h.misses.Add(1) }

func TestCachedStoreCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: seeded(t)}
	mem := cache.NewMemory(100, 0)
	defer mem.Close()
	stats := &hitCounter{}
	c := NewCachedStore(inner, mem, time.Minute, stats)

	_, err := c.TextRecords(ctx, "alice")
	require.NoError(t, err)
	_, err = c.TextRecords(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.reads.Load())
	assert.Equal(t, int32(1), stats.hits.Load())

	require.NoError(t, c.SetTextRecord(ctx, "alice", types.TextRecordFrame, "https://example.com/w"))
	recs, err := c.TextRecords(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/w", recs.FrameURL())
	assert.Equal(t, int32(2), inner.reads.Load())
}

func TestCachedStoreSharesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: seeded(t), gate: make(chan struct{})}
	mem := cache.NewMemory(100, 0)
	defer mem.Close()
	c := NewCachedStore(inner, mem, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.TextRecords(ctx, "alice")
			assert.NoError(t, err)
		}()
	}
	// let the goroutines pile up on the in-flight read
	time.Sleep(50 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	assert.LessOrEqual(t, inner.reads.Load(), int32(5))
	assert.GreaterOrEqual(t, inner.reads.Load(), int32(1))
}

func TestCachedStoreDoesNotCacheMissingProfile(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	mem := cache.NewMemory(100, 0)
	defer mem.Close()
	c := NewCachedStore(inner, mem, time.Minute, nil)

	_, err := c.TextRecords(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.RegisterProfile(ctx, types.Profile{Username: "ghost", Address: aliceAddr}))
	_, err = c.TextRecords(ctx, "ghost")
	assert.NoError(t, err)
}
