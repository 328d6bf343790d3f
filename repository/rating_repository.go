package repository

import (
	"fmt"

	"github.com/reed-hollis/photoshelfbackend/database"
)

// RatingRepository handles rating record operations across collections,
// resolving each collection to its own store through the pool
type RatingRepository struct {
	Pool *database.CollectionPool
}

// NewRatingRepository creates a new instance of RatingRepository
func NewRatingRepository(pool *database.CollectionPool) *RatingRepository {
	return &RatingRepository{Pool: pool}
}

// GetAll returns every rating record for a collection; an uninitialized
// collection yields an empty map
func (r *RatingRepository) GetAll(collectionPath string) (map[string]database.RatingRecord, error) {
	db, err := r.Pool.Get(collectionPath)
	if err != nil {
		return nil, err
	}
	records, err := database.GetAllRatings(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for %s: %w", collectionPath, err)
	}
	return records, nil
}

// Upsert creates or replaces the rating record for one photo identity
func (r *RatingRepository) Upsert(collectionPath, id string, rating *int, overrule *bool) (database.RatingRecord, error) {
	db, err := r.Pool.Get(collectionPath)
	if err != nil {
		return database.RatingRecord{}, err
	}
	return database.UpsertRating(db, id, rating, overrule)
}

// ResetOverruleFlags clears the overrule flag on every record of the
// collection
func (r *RatingRepository) ResetOverruleFlags(collectionPath string) error {
	db, err := r.Pool.Get(collectionPath)
	if err != nil {
		return err
	}
	return database.ResetOverruleFlags(db)
}

// ForCollection returns a store bound to one collection, satisfying the
// narrow interface the conflict resolver and batch applier consume.
func (r *RatingRepository) ForCollection(collectionPath string) *CollectionRatingStore {
	return &CollectionRatingStore{repo: r, path: collectionPath}
}

// CollectionRatingStore scopes a RatingRepository to a single collection.
type CollectionRatingStore struct {
	repo *RatingRepository
	path string
}

func (s *CollectionRatingStore) Upsert(identity string, rating *int, overrule *bool) error {
	_, err := s.repo.Upsert(s.path, identity, rating, overrule)
	return err
}

func (s *CollectionRatingStore) ResetOverruleFlags() error {
	return s.repo.ResetOverruleFlags(s.path)
}
