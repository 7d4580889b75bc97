package rcache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

func TestPostgresRepository_Get_LiveEntry(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	cached := []types.Place{{PlaceID: "p1", Name: "Corner Cafe"}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	mockPool.ExpectQuery(`SELECT places(.+)FROM recommendations(.+)WHERE cache_key = \$1 AND expires_at > now\(\)`).
		WithArgs("15.5553_73.7517_restaurants_en").
		WillReturnRows(pgxmock.NewRows([]string{"places"}).AddRow(payload))

	repo := NewPostgresRepository(mockPool, testLogger())
	places, err := repo.Get(context.Background(), "15.5553_73.7517_restaurants_en")

	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Corner Cafe", places[0].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_Get_ExpiredEntryIsMiss(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	// a row past its expires_at is filtered out by the query, so an
	// expired entry surfaces as ErrNoRows and the caller sees a miss
	mockPool.ExpectQuery(`SELECT places(.+)FROM recommendations(.+)WHERE cache_key = \$1 AND expires_at > now\(\)`).
		WithArgs("15.5553_73.7517_restaurants_en").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mockPool, testLogger())
	places, err := repo.Get(context.Background(), "15.5553_73.7517_restaurants_en")

	require.NoError(t, err)
	assert.Nil(t, places)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_Save_ReplacesEntryInTransaction(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	places := []types.Place{{PlaceID: "p1", Name: "Corner Cafe"}}

	mockPool.ExpectBeginTx(pgx.TxOptions{})
	mockPool.ExpectExec(`DELETE FROM recommendations WHERE cache_key = \$1`).
		WithArgs("key").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockPool.ExpectExec(`INSERT INTO recommendations`).
		WithArgs("key", 15.5553, 73.7517, "restaurants", "en", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	repo := NewPostgresRepository(mockPool, testLogger())
	err = repo.Save(context.Background(), "key",
		types.Coordinates{Latitude: 15.5553, Longitude: 73.7517},
		types.CategoryRestaurants, "en", places, time.Hour)

	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteExpired(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(`DELETE FROM recommendations WHERE expires_at <= now\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewPostgresRepository(mockPool, testLogger())
	deleted, err := repo.DeleteExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
