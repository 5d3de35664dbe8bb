package migration

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

func keywords(s string) *string { return &s }

// DefaultCategories are the system categories every installation starts with.
// Ids are fixed so seeding is repeatable.
var DefaultCategories = []entity.Category{
	{ID: "cat-salary", Name: "Salary", Type: entity.CategoryTypeSystem, Keywords: keywords("salary,payroll,wage")},
	{ID: "cat-groceries", Name: "Groceries", Type: entity.CategoryTypeSystem, Keywords: keywords("grocery,supermarket,market,carrefour,naivas")},
	{ID: "cat-dining", Name: "Dining", Type: entity.CategoryTypeSystem, Keywords: keywords("restaurant,cafe,coffee,pizza")},
	{ID: "cat-transport", Name: "Transport", Type: entity.CategoryTypeSystem, Keywords: keywords("uber,bolt,fuel,petrol,taxi,bus")},
	{ID: "cat-utilities", Name: "Utilities", Type: entity.CategoryTypeSystem, Keywords: keywords("electricity,water,internet,kplc")},
	{ID: "cat-rent", Name: "Rent", Type: entity.CategoryTypeSystem, Keywords: keywords("rent,landlord")},
	{ID: "cat-entertainment", Name: "Entertainment", Type: entity.CategoryTypeSystem, Keywords: keywords("netflix,spotify,cinema")},
	{ID: "cat-health", Name: "Health", Type: entity.CategoryTypeSystem, Keywords: keywords("pharmacy,hospital,clinic")},
	{ID: "cat-transfer", Name: "Transfers", Type: entity.CategoryTypeSystem, Keywords: keywords("transfer,m-pesa,mpesa")},
	{ID: "cat-other", Name: "Other", Type: entity.CategoryTypeSystem},
}

// CreateDefaultCategories inserts the default categories that are missing.
// Existing rows, including edited ones, are left alone.
func CreateDefaultCategories(ctx context.Context, db *gorm.DB) (int64, error) {
	rows := make([]entity.Category, len(DefaultCategories))
	copy(rows, DefaultCategories)

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return result.RowsAffected, result.Error
}
