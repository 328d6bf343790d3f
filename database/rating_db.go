package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reed-hollis/photoshelfbackend/ratings"
)

// ErrInvalidRating is returned when an upsert carries a non-null rating
// outside the 1..5 range. Callers must not retry with the same value.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// RatingRecord is the persisted rating state of one photo identity.
// OverruleFileRating=true marks the stored rating authoritative: embedded
// metadata that disagrees is not re-flagged until the flag is bulk-reset by
// a completed batch apply.
type RatingRecord struct {
	ID                 string `json:"id"`
	Rating             *int   `json:"rating"`
	OverruleFileRating *bool  `json:"overrule_file_rating"`
	UpdatedAt          int64  `json:"updated_at"`
}

// GetAllRatings returns every record in the collection's store, keyed by
// photo identity. A fresh or empty store yields an empty map, never an
// error.
func GetAllRatings(db *sql.DB) (map[string]RatingRecord, error) {
	queryBuilder := psql.Select("id", "rating", "overrule_file_rating", "updated_at").
		From("ratings")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetAllRatings: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	records := make(map[string]RatingRecord)
	for rows.Next() {
		var rec RatingRecord
		var rating sql.NullInt64
		var overrule sql.NullBool
		if err := rows.Scan(&rec.ID, &rating, &overrule, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating record: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			rec.Rating = &v
		}
		if overrule.Valid {
			v := overrule.Bool
			rec.OverruleFileRating = &v
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating rating records: %w", err)
	}
	return records, nil
}

// UpsertRating creates the record for id if absent, else replaces its
// rating, overrule flag and timestamp. The write is a single native sqlite
// upsert, so concurrent writers on the same identity can never interleave a
// stale read-modify-write.
func UpsertRating(db *sql.DB, id string, rating *int, overrule *bool) (RatingRecord, error) {
	if rating != nil && !ratings.IsValid(*rating) {
		return RatingRecord{}, fmt.Errorf("%w, got %d", ErrInvalidRating, *rating)
	}

	now := time.Now().Unix()
	queryBuilder := psql.Insert("ratings").
		Columns("id", "rating", "overrule_file_rating", "updated_at").
		Values(id, rating, overrule, now).
		Suffix("ON CONFLICT(id) DO UPDATE SET").
		Suffix("rating = excluded.rating,").
		Suffix("overrule_file_rating = excluded.overrule_file_rating,").
		Suffix("updated_at = excluded.updated_at")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return RatingRecord{}, fmt.Errorf("failed to build SQL query for UpsertRating: %w", err)
	}

	_, err = db.Exec(sqlStr, args...)
	if err != nil {
		return RatingRecord{}, fmt.Errorf("failed to upsert rating for %s: %w", id, err)
	}

	return RatingRecord{ID: id, Rating: rating, OverruleFileRating: overrule, UpdatedAt: now}, nil
}

// ResetOverruleFlags clears the overrule flag on every record in the
// collection, leaving ratings untouched. Runs once per completed batch
// apply so future divergence is re-detected fresh.
func ResetOverruleFlags(db *sql.DB) error {
	queryBuilder := psql.Update("ratings").Set("overrule_file_rating", nil)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for ResetOverruleFlags: %w", err)
	}

	_, err = db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to reset overrule flags: %w", err)
	}
	return nil
}
