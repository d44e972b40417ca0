package clientdata

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/voyager/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(Schema))
	return NewRepository(db.Conn())
}

type payload struct {
	Value string `json:"value"`
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("serpapi_prices", "LAX:NRT:2026-10-01::economy", payload{Value: "hit"}, time.Hour))

	data, err := repo.GetIfFresh("serpapi_prices", "LAX:NRT:2026-10-01::economy")
	require.NoError(t, err)
	require.NotNil(t, data)

	var got payload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "hit", got.Value)
}

func TestGetIfFreshMissesExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("serpapi_prices", "key", payload{Value: "old"}, -time.Minute))

	fresh, err := repo.GetIfFresh("serpapi_prices", "key")
	require.NoError(t, err)
	assert.Nil(t, fresh)

	// The stale-read fallback still sees it.
	stale, err := repo.Get("serpapi_prices", "key")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestGetIfFreshMissingKey(t *testing.T) {
	repo := newTestRepo(t)

	data, err := repo.GetIfFresh("serpapi_prices", "nope")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStoreUpserts(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("balances", "acct-1", payload{Value: "v1"}, time.Hour))
	require.NoError(t, repo.Store("balances", "acct-1", payload{Value: "v2"}, time.Hour))

	data, err := repo.GetIfFresh("balances", "acct-1")
	require.NoError(t, err)

	var got payload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "v2", got.Value)
}

func TestUnknownTableRejected(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Store("users; DROP TABLE", "k", payload{}, time.Hour)
	assert.Error(t, err)
}

func TestDeleteAllExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("serpapi_prices", "stale", payload{}, -time.Minute))
	require.NoError(t, repo.Store("serpapi_prices", "fresh", payload{}, time.Hour))
	require.NoError(t, repo.Store("balances", "stale-acct", payload{}, -time.Minute))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results["serpapi_prices"])
	assert.Equal(t, int64(1), results["balances"])

	data, err := repo.Get("serpapi_prices", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, data, "fresh entries survive the sweep")
}
