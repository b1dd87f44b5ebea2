package history

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/fring/pkg/models"
)

// testStore returns a connected PostgresStore or skips if DATABASE_URL is
// not set.
func testStore(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, Migrate(dbURL))

	store, err := NewPostgresStore(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store
}

func TestPostgresStore_LoadMissingKey(t *testing.T) {
	store := testStore(t)

	_, ok, err := store.Load(context.Background(), "missing-"+uuid.New().String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStore_RoundTripAndUpsert(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	key := "history-" + uuid.New().String()[:8]

	require.NoError(t, store.Save(ctx, key, []byte(`{"v":1}`)))

	data, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(data))

	require.NoError(t, store.Save(ctx, key, []byte(`{"v":2}`)))
	data, _, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestLedger_OverPostgresStore(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	l := NewLedger(store, 3, nil)
	partition := "PG-" + uuid.New().String()[:8]

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, partition, []models.TestOutcome{
			{Name: "login", Status: models.StatusFailed},
		}))
	}

	snap, err := l.Load(ctx, partition)
	require.NoError(t, err)
	assert.Len(t, snap["login"], 3)
}
