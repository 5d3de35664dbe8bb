package entity

import "strings"

// Category labels transactions. System categories are seeded and shared;
// user categories are created by users.
type Category struct {
	ID       string       `gorm:"primaryKey;type:text" json:"id"`
	Name     string       `gorm:"type:text;not null" json:"name"`
	Type     CategoryType `gorm:"type:text;not null" json:"type"`
	Keywords *string      `gorm:"type:text" json:"keywords"`

	Transactions     []Transaction    `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	BudgetCategories []BudgetCategory `gorm:"foreignKey:CategoryID" json:"budgetCategories,omitempty"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// KeywordList splits the comma separated keywords, lowercased and trimmed
func (c *Category) KeywordList() []string {
	if c.Keywords == nil {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(*c.Keywords, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
