package models

// Collection is an app-level registry entry for one photo collection
// directory under the root. The per-photo rating records are NOT here; they
// live in the collection's own rating store.
type Collection struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Path       string `gorm:"uniqueIndex;not null" json:"path"` // relative to ROOT_DIRECTORY
	SortOrder  string `gorm:"not null;default:filename_asc" json:"sort_order"`
	LastOpened *int64 `json:"last_opened,omitempty"` // Nullable, Unix timestamp
	CreatedAt  int64  `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Collection) TableName() string {
	return "collections"
}
