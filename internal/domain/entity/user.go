package entity

import (
	"strings"
	"time"
)

// User owns accounts, statements, transactions and budgets
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"passwordHash"`
	Name         *string   `gorm:"type:text" json:"name"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`

	Accounts     []Account     `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Statements   []Statement   `gorm:"foreignKey:UserID" json:"statements,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an email address so the unique index
// compares addresses the way users expect.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName returns the user's name, falling back to the email address
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
