package records

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-frames/internal/types"
)

// Runs only against a disposable database:
// PROFILE_FRAMES_TEST_DATABASE_URL=postgres://... go test ./internal/records
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("PROFILE_FRAMES_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PROFILE_FRAMES_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := ConnectPostgres(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Migrate(ctx)
	require.NoError(t, err)

	require.NoError(t, s.RegisterProfile(ctx, types.Profile{Username: "pgtest", Address: aliceAddr}))
	require.NoError(t, s.SetTextRecord(ctx, "pgtest", types.TextRecordFrame, "https://example.com/widget"))

	recs, err := s.TextRecords(ctx, "pgtest")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/widget", recs.FrameURL())

	require.NoError(t, s.SetTextRecord(ctx, "pgtest", types.TextRecordFrame, ""))
	recs, err = s.TextRecords(ctx, "pgtest")
	require.NoError(t, err)
	assert.Empty(t, recs.FrameURL())

	assert.ErrorIs(t, s.SetTextRecord(ctx, "nobody-here", types.TextRecordFrame, "x"), ErrNotFound)
	_, err = s.TextRecords(ctx, "nobody-here")
	assert.ErrorIs(t, err, ErrNotFound)
}
