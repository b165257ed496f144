package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(10, 0)
	defer m.Close()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryEvictsSoonestExpiring(t *testing.T) {
	m := NewMemory(2, 0)
	defer m.Close()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Duration(i)*time.Minute))
	}
	assert.Equal(t, 2, m.Len())
	_, ok, _ := m.Get(ctx, "k1")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "k3")
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	m := NewMemory(0, 0)
	defer m.Close()
	ctx := context.Background()

	type payload struct{ N int }
	require.NoError(t, SetJSON(ctx, m, "p", payload{N: 3}, time.Minute))

	var got payload
	found, err := GetJSON(ctx, m, "p", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.N)

	found, err = GetJSON(ctx, m, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "bad", []byte("{"), time.Minute))
	_, err = GetJSON(ctx, m, "bad", &got)
	assert.Error(t, err)
}

func TestOpenWithoutRedisUsesMemory(t *testing.T) {
	b, kind := Open("", "test:", 100)
	defer b.Close()
	assert.Equal(t, "memory", kind)
}
