package quota

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/voyager/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, cap int64) *Tracker {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "state.db"),
		Profile: database.ProfileStandard,
		Name:    "state",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(Schema))
	return NewTracker(db.Conn(), "serpapi", cap, zerolog.Nop())
}

func TestTryAcquireCountsToCap(t *testing.T) {
	tr := newTestTracker(t, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.TryAcquire())
	}

	err := tr.TryAcquire()
	require.ErrorIs(t, err, ErrExhausted)

	used, limit, err := tr.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(3), used)
	assert.Equal(t, int64(3), limit)
}

func TestReleaseReturnsAUnit(t *testing.T) {
	tr := newTestTracker(t, 1)

	require.NoError(t, tr.TryAcquire())
	require.ErrorIs(t, tr.TryAcquire(), ErrExhausted)

	require.NoError(t, tr.Release())
	assert.NoError(t, tr.TryAcquire())
}

func TestPeriodRolloverResetsCounter(t *testing.T) {
	tr := newTestTracker(t, 2)

	current := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return current }

	require.NoError(t, tr.TryAcquire())
	require.NoError(t, tr.TryAcquire())
	require.ErrorIs(t, tr.TryAcquire(), ErrExhausted)

	// Month boundary: a fresh period row, a fresh counter.
	current = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, tr.TryAcquire())

	remaining, err := tr.Remaining()
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestUsageBeforeAnyAcquire(t *testing.T) {
	tr := newTestTracker(t, 10)

	used, limit, err := tr.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, int64(10), limit)
}
