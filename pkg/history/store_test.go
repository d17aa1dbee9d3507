package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAssignsID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &Run{
		Mode:       ModeMelody,
		Seed:       123456789,
		Scale:      "major",
		Key:        "C",
		Octave:     3,
		Directions: []string{"Pattern 1", "Pattern 7"},
		Locations:  []string{"output/melody_generated.mid"},
	}
	require.NoError(t, store.Record(ctx, run))
	assert.Len(t, run.ID, 36)

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, []string{"Pattern 1", "Pattern 7"}, got.Directions)
	assert.Equal(t, []string{"output/melody_generated.mid"}, got.Locations)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetByPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &Run{ID: "abcdef01-0000-0000-0000-000000000000", Mode: ModePitch}
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, "abcdef01")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = store.Get(ctx, "ffff")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestGetAmbiguousPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &Run{ID: "aa-1", Mode: ModeMelody}))
	require.NoError(t, store.Record(ctx, &Run{ID: "aa-2", Mode: ModeMelody}))

	_, err := store.Get(ctx, "aa")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunNotFound)
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, &Run{
			Mode:      ModeMelody,
			Seed:      int64(i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, int64(4), runs[0].Seed)
	assert.Equal(t, int64(3), runs[1].Seed)
	assert.Equal(t, int64(2), runs[2].Seed)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestFindBySeed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &Run{Mode: ModeMelody, Seed: 42, SHA256: "a"}))
	require.NoError(t, store.Record(ctx, &Run{Mode: ModePitch, Seed: 42, SHA256: "b"}))
	require.NoError(t, store.Record(ctx, &Run{Mode: ModeMelody, Seed: 7}))

	runs, err := store.FindBySeed(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestInMemoryStore(t *testing.T) {
	store, err := Open(":memory:", false)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), &Run{Mode: ModeScale}))
	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
