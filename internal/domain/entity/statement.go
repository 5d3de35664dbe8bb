package entity

import "time"

// Statement is an uploaded bank statement file. ProcessedAt stays nil until
// the import pipeline has created every transaction of the file; it is set
// exactly once.
type Statement struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	UserID      string     `gorm:"type:text;not null;index" json:"userId"`
	AccountID   string     `gorm:"type:text;not null;index" json:"accountId"`
	Filename    string     `gorm:"type:text;not null" json:"filename"`
	FileType    FileType   `gorm:"type:text;not null" json:"fileType"`
	UploadedAt  time.Time  `gorm:"not null;autoCreateTime" json:"uploadedAt"`
	ProcessedAt *time.Time `json:"processedAt"`

	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Account      *Account      `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:StatementID" json:"transactions,omitempty"`
}

// TableName specifies the table name for Statement
func (Statement) TableName() string {
	return "statements"
}

// IsProcessed reports whether the import of this statement completed
func (s *Statement) IsProcessed() bool {
	return s.ProcessedAt != nil
}
