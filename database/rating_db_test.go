package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestGetAllRatingsEmptyStore(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestUpsertRatingCreatesAndReplaces(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	rec, err := UpsertRating(db, "img1", intPtr(4), nil)
	require.NoError(t, err)
	assert.Equal(t, "img1", rec.ID)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 4, *rec.Rating)
	assert.Nil(t, rec.OverruleFileRating)
	assert.NotZero(t, rec.UpdatedAt)

	// second upsert on the same identity replaces, not duplicates
	_, err = UpsertRating(db, "img1", intPtr(2), boolPtr(true))
	require.NoError(t, err)

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records["img1"]
	require.NotNil(t, got.Rating)
	assert.Equal(t, 2, *got.Rating)
	require.NotNil(t, got.OverruleFileRating)
	assert.True(t, *got.OverruleFileRating)
}

func TestUpsertRatingIdempotent(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = UpsertRating(db, "img1", intPtr(4), boolPtr(false))
	require.NoError(t, err)
	_, err = UpsertRating(db, "img1", intPtr(4), boolPtr(false))
	require.NoError(t, err)

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records["img1"]
	assert.Equal(t, 4, *got.Rating)
	assert.False(t, *got.OverruleFileRating)
}

func TestUpsertRatingNullRating(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	// a record can exist with no rating, e.g. after clearing one
	_, err = UpsertRating(db, "img1", nil, boolPtr(false))
	require.NoError(t, err)

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	got, ok := records["img1"]
	require.True(t, ok)
	assert.Nil(t, got.Rating)
	require.NotNil(t, got.OverruleFileRating)
	assert.False(t, *got.OverruleFileRating)
}

func TestUpsertRatingRejectsOutOfRange(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, bad := range []int{0, 6, -3, 100} {
		_, err := UpsertRating(db, "img1", intPtr(bad), nil)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d must be rejected", bad)
	}

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	assert.Empty(t, records, "rejected upserts must not write")
}

func TestResetOverruleFlags(t *testing.T) {
	db, err := InitRatingDB(filepath.Join(t.TempDir(), "ratings.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = UpsertRating(db, "a", intPtr(5), boolPtr(true))
	require.NoError(t, err)
	_, err = UpsertRating(db, "b", intPtr(3), boolPtr(true))
	require.NoError(t, err)
	_, err = UpsertRating(db, "c", intPtr(1), nil)
	require.NoError(t, err)

	require.NoError(t, ResetOverruleFlags(db))

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for id, rec := range records {
		assert.Nil(t, rec.OverruleFileRating, "flag on %s must be cleared", id)
		assert.NotNil(t, rec.Rating, "ratings on %s must survive the reset", id)
	}
	// ratings themselves are untouched
	assert.Equal(t, 5, *records["a"].Rating)
	assert.Equal(t, 3, *records["b"].Rating)
	assert.Equal(t, 1, *records["c"].Rating)
}

func TestInitRatingDBReopens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ratings.db")

	db, err := InitRatingDB(dbPath)
	require.NoError(t, err)
	_, err = UpsertRating(db, "img1", intPtr(4), nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening the same file keeps the data
	db, err = InitRatingDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	records, err := GetAllRatings(db)
	require.NoError(t, err)
	require.Contains(t, records, "img1")
	assert.Equal(t, 4, *records["img1"].Rating)
}
