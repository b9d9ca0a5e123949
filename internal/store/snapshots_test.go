package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSnapshotLinked(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec, _, err := s.Upsert(ctx, &RecordInput{NaturalKey: "k"})
	require.NoError(t, err)

	snap, err := s.AddSnapshot(ctx, &rec.ID, "<html>page</html>", "http://example.com", "Example")
	require.NoError(t, err)
	require.NotNil(t, snap.RecordID)
	assert.Equal(t, rec.ID, *snap.RecordID)
	assert.Equal(t, len("<html>page</html>"), snap.ContentLength)

	content, found, err := s.GetSnapshotContent(ctx, snap.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<html>page</html>", content)
}

func TestAddSnapshotOrphan(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	snap, err := s.AddSnapshot(ctx, nil, "<html>nothing extracted</html>", "http://x", "")
	require.NoError(t, err)
	assert.Nil(t, snap.RecordID)

	snaps, err := s.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Nil(t, snaps[0].RecordID)
}

func TestAddSnapshotRejectsDanglingRecord(t *testing.T) {
	s, _ := newTestStore(t)

	ghost := uuid.New()
	_, err := s.AddSnapshot(context.Background(), &ghost, "content", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestListSnapshotsOmitsContent(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddSnapshot(ctx, nil, "older", "http://a", "A")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = s.AddSnapshot(ctx, nil, "newer", "http://b", "B")
	require.NoError(t, err)

	snaps, err := s.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "http://b", snaps[0].PageURL)
	assert.Empty(t, snaps[0].Content, "listing carries metadata only")
	assert.Equal(t, len("newer"), snaps[0].ContentLength)
}

func TestGetSnapshotContentMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, found, err := s.GetSnapshotContent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}
