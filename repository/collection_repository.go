package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/models"
)

// CollectionRepository handles database operations for the collection
// registry
type CollectionRepository struct {
	DB *gorm.DB
}

// NewCollectionRepository creates a new instance of CollectionRepository
func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{DB: db}
}

// GetOrCreateByPath returns the registry entry for a collection path,
// creating it with defaults on first sight
func (r *CollectionRepository) GetOrCreateByPath(path string) (*models.Collection, error) {
	collection := models.Collection{
		Path:      path,
		SortOrder: database.DefaultSortOrder,
		CreatedAt: time.Now().Unix(),
	}
	result := r.DB.Where(models.Collection{Path: path}).FirstOrCreate(&collection)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to ensure collection record for %s: %w", path, result.Error)
	}
	return &collection, nil
}

// ListAll retrieves all registered collections, ordered by path
func (r *CollectionRepository) ListAll() ([]models.Collection, error) {
	var collections []models.Collection
	err := r.DB.Order("path ASC").Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// UpdateSortOrder sets the persisted sort order for a collection
func (r *CollectionRepository) UpdateSortOrder(id uint, sortOrder string) error {
	if !database.IsValidSortOrder(sortOrder) {
		return fmt.Errorf("invalid sort order: %s", sortOrder)
	}
	result := r.DB.Model(&models.Collection{}).Where("id = ?", id).Update("sort_order", sortOrder)
	if result.Error != nil {
		return fmt.Errorf("failed to update sort order for collection %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchLastOpened stamps the collection as just opened
func (r *CollectionRepository) TouchLastOpened(id uint) error {
	now := time.Now().Unix()
	err := r.DB.Model(&models.Collection{}).Where("id = ?", id).Update("last_opened", now).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to touch collection %d: %w", id, err)
	}
	return nil
}
