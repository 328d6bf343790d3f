package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/reed-hollis/photoshelfbackend/models"
)

// PreferenceRepository handles database operations for UI preferences
type PreferenceRepository struct {
	DB *gorm.DB
}

// NewPreferenceRepository creates a new instance of PreferenceRepository
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// Get retrieves a preference by key
func (r *PreferenceRepository) Get(key string) (*models.Preference, error) {
	var pref models.Preference
	err := r.DB.Where("key = ?", key).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return &pref, nil
}

// Set creates or replaces a preference value
func (r *PreferenceRepository) Set(key, value string) error {
	pref := models.Preference{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	}
	if err := r.DB.Save(&pref).Error; err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// ListAll retrieves all preferences
func (r *PreferenceRepository) ListAll() ([]models.Preference, error) {
	var prefs []models.Preference
	err := r.DB.Order("key ASC").Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}
