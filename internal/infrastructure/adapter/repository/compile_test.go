package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// renderWhere compiles w for Category and returns the SELECT gorm would send
func renderWhere(t *testing.T, w query.Where) (string, []any) {
	t.Helper()
	db, _ := newMockDB(t)
	registry, err := schema.NewRegistry(entity.Models()...)
	require.NoError(t, err)
	m, ok := registry.ModelByName("Category")
	require.True(t, ok)

	expr, err := compileWhere(m, w)
	require.NoError(t, err)

	stmt := filtered(db.Session(&gorm.Session{DryRun: true}), expr).
		Find(&[]entity.Category{}).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `C:\\tmp`, escapeLike(`C:\tmp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestCompileWhere(t *testing.T) {
	tests := []struct {
		name     string
		where    query.Where
		wantSQL  string
		wantVars []any
	}{
		{
			name:     "empty where has no clause",
			where:    query.Where{},
			wantSQL:  `SELECT * FROM "categories"`,
			wantVars: nil,
		},
		{
			name:     "insensitive contains escapes wildcards",
			where:    query.Field("name", query.Contains("50%_off").Insensitive()),
			wantSQL:  `SELECT * FROM "categories" WHERE "categories"."name" ILIKE $1`,
			wantVars: []any{`%50\%\_off%`},
		},
		{
			name:     "insensitive equals lowers both sides",
			where:    query.Field("name", query.Equals("Groceries").Insensitive()),
			wantSQL:  `SELECT * FROM "categories" WHERE LOWER("categories"."name") = $1`,
			wantVars: []any{"groceries"},
		},
		{
			name:     "starts with is case sensitive by default",
			where:    query.Field("name", query.StartsWith("Gro")),
			wantSQL:  `SELECT * FROM "categories" WHERE "categories"."name" LIKE $1`,
			wantVars: []any{"Gro%"},
		},
		{
			name:     "equals null is IS NULL",
			where:    query.Field("keywords", query.Equals(query.Null)),
			wantSQL:  `SELECT * FROM "categories" WHERE "categories"."keywords" IS NULL`,
			wantVars: nil,
		},
		{
			name:     "not equals null negates IS NULL",
			where:    query.Field("keywords", query.NotEquals(query.Null)),
			wantSQL:  `SELECT * FROM "categories" WHERE NOT ("categories"."keywords" IS NULL)`,
			wantVars: nil,
		},
		{
			name:     "empty in matches nothing",
			where:    query.Field("id", query.Filter{In: []any{}}),
			wantSQL:  `SELECT * FROM "categories" WHERE FALSE`,
			wantVars: nil,
		},
		{
			name:     "empty not in is ignored",
			where:    query.Field("id", query.Filter{NotIn: []any{}}),
			wantSQL:  `SELECT * FROM "categories"`,
			wantVars: nil,
		},
		{
			name:     "empty OR matches nothing",
			where:    query.Where{OR: []query.Where{}},
			wantSQL:  `SELECT * FROM "categories" WHERE FALSE`,
			wantVars: nil,
		},
		{
			name: "OR with an empty alternative matches everything in that branch",
			where: query.Or(
				query.Field("type", query.Equals(entity.CategoryTypeSystem)),
				query.Where{},
			),
			wantSQL:  `SELECT * FROM "categories" WHERE ("categories"."type" = $1 OR TRUE)`,
			wantVars: []any{"system"},
		},
		{
			name: "NOT of several fields negates their conjunction",
			where: query.Not(query.Fields(map[string]query.Filter{
				"type": query.Equals(entity.CategoryTypeUser),
				"name": query.In("Rent", "Salary"),
			})),
			wantSQL:  `SELECT * FROM "categories" WHERE NOT (("categories"."name" IN ($1,$2) AND "categories"."type" = $3))`,
			wantVars: []any{"Rent", "Salary", "user"},
		},
		{
			name: "AND and field filters combine",
			where: query.Where{
				Fields: map[string]query.Filter{"type": query.Equals(entity.CategoryTypeUser)},
				AND:    []query.Where{query.Field("name", query.Gte("M"))},
			},
			wantSQL:  `SELECT * FROM "categories" WHERE ("categories"."type" = $1 AND "categories"."name" >= $2)`,
			wantVars: []any{"user", "M"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotVars := renderWhere(t, tt.where)
			assert.Equal(t, tt.wantSQL, gotSQL)
			if tt.wantVars == nil {
				assert.Empty(t, gotVars)
			} else {
				assert.Equal(t, tt.wantVars, gotVars)
			}
		})
	}
}

func TestCompileWhere_UnknownField(t *testing.T) {
	registry, err := schema.NewRegistry(entity.Models()...)
	require.NoError(t, err)
	m, _ := registry.ModelByName("Category")

	_, err = compileWhere(m, query.Field("colour", query.Equals("red")))
	assert.ErrorContains(t, err, `unknown field "colour"`)
}

func TestCompileData(t *testing.T) {
	registry, err := schema.NewRegistry(entity.Models()...)
	require.NoError(t, err)
	m, _ := registry.ModelByName("Account")

	values, err := compileData(m, query.Data{
		"name":    "Holiday fund",
		"balance": query.Decrement("12.30"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Holiday fund", values["name"])
	expr, ok := values["balance"].(clause.Expr)
	require.True(t, ok, "atomic operations compile to expressions")
	assert.Equal(t, "? - ?", expr.SQL)
	require.Len(t, expr.Vars, 2)
	assert.Equal(t, clause.Column{Table: "accounts", Name: "balance"}, expr.Vars[0])
	assert.True(t, decimal.RequireFromString("12.3").Equal(expr.Vars[1].(decimal.Decimal)))
}

func TestCompileData_NullClearsColumn(t *testing.T) {
	registry, err := schema.NewRegistry(entity.Models()...)
	require.NoError(t, err)
	m, _ := registry.ModelByName("Category")

	values, err := compileData(m, query.Data{"keywords": query.Null})
	require.NoError(t, err)
	v, present := values["keywords"]
	assert.True(t, present)
	assert.Nil(t, v)
}
