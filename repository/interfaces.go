package repository

import (
	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/models"
)

// RatingStoreInterface defines the methods for per-collection rating records
type RatingStoreInterface interface {
	GetAll(collectionPath string) (map[string]database.RatingRecord, error)
	Upsert(collectionPath, id string, rating *int, overrule *bool) (database.RatingRecord, error)
	ResetOverruleFlags(collectionPath string) error
}

// CollectionRepositoryInterface defines the methods for the collection
// registry
type CollectionRepositoryInterface interface {
	GetOrCreateByPath(path string) (*models.Collection, error)
	ListAll() ([]models.Collection, error)
	UpdateSortOrder(id uint, sortOrder string) error
	TouchLastOpened(id uint) error
}

// PreferenceRepositoryInterface defines the methods for UI preference
// key-value storage
type PreferenceRepositoryInterface interface {
	Get(key string) (*models.Preference, error)
	Set(key, value string) error
	ListAll() ([]models.Preference, error)
}
