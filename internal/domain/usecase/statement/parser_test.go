package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
)

func TestParseCSV(t *testing.T) {
	t.Run("Signed amounts without type column", func(t *testing.T) {
		input := "\ufeffDate, Description ,Amount\n" +
			"2026-03-01,Salary March,\"2,500.00\"\n" +
			"\n" +
			"2026-03-02T08:15:00+03:00,Naivas Supermarket,-42.10\n"

		rows, err := ParseCSV(strings.NewReader(input), Limits{})

		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
		assert.Equal(t, "2500", rows[0].Amount.String())
		assert.Equal(t, entity.TransactionTypeIncome, rows[0].Type)

		assert.Equal(t, 4, rows[1].Line)
		assert.Equal(t, time.Date(2026, 3, 2, 5, 15, 0, 0, time.UTC), rows[1].Date)
		assert.Equal(t, "42.1", rows[1].Amount.String())
		assert.Equal(t, entity.TransactionTypeExpense, rows[1].Type)
	})

	t.Run("Type column overrides the sign", func(t *testing.T) {
		input := "date,description,amount,type\n" +
			"2026-03-05,Move to savings,-100,Transfer\n" +
			"2026-03-06,Refund,12.00,\n"

		rows, err := ParseCSV(strings.NewReader(input), Limits{})

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, entity.TransactionTypeTransfer, rows[0].Type)
		assert.Equal(t, "100", rows[0].Amount.String())
		assert.Equal(t, entity.TransactionTypeIncome, rows[1].Type)
	})

	failures := []struct {
		name   string
		input  string
		limits Limits
		msg    string
	}{
		{"Empty file", "", Limits{}, "empty file"},
		{"Missing columns", "date,memo\n2026-01-01,x\n", Limits{}, "header is missing description, amount"},
		{"Header only", "date,description,amount\n", Limits{}, "no transactions"},
		{"Bad date", "date,description,amount\n01/03/2026,x,1\n", Limits{}, "line 2: invalid date"},
		{"Bad amount", "date,description,amount\n2026-01-01,x,1e3\n", Limits{}, "line 2"},
		{"Empty description", "date,description,amount\n2026-01-01, ,1\n", Limits{}, "line 2: empty description"},
		{"Unknown type", "date,description,amount,type\n2026-01-01,x,1,refund\n", Limits{}, "unknown type"},
		{"Too many rows", "date,description,amount\n2026-01-01,a,1\n2026-01-02,b,2\n", Limits{MaxRows: 1}, "more than 1 rows"},
		{"Too large", "date,description,amount\n2026-01-01,a,1\n", Limits{MaxFileBytes: 10}, "larger than 10 bytes"},
		{"Malformed quoting", "date,description,amount\n2026-01-01,\"a,1\n", Limits{}, ""},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input), tt.limits)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidStatementFile)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
