package entity

// Models returns a zero value of every persisted entity, in dependency order
// (parents before children).
func Models() []any {
	return []any{
		&User{},
		&Account{},
		&Statement{},
		&Category{},
		&Transaction{},
		&Budget{},
		&BudgetCategory{},
	}
}
