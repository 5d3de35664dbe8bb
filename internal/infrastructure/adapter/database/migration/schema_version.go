package migration

import "time"

// SchemaVersion is one applied step of the ledger schema history. Rows are
// only ever appended.
type SchemaVersion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Version   string    `gorm:"type:varchar(20);not null;index"`
	AppliedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Details   string    `gorm:"type:text"`
}

func (SchemaVersion) TableName() string {
	return "schema_versions"
}
