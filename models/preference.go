package models

// Preference is a small key-value record for UI/session state: active
// folder, recent paths, last-viewed index. The reconciliation core never
// reads these.
type Preference struct {
	Key       string `gorm:"primaryKey" json:"key"`
	Value     string `gorm:"not null" json:"value"`
	UpdatedAt int64  `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Preference) TableName() string {
	return "preferences"
}
