package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionBalanceEffect(t *testing.T) {
	amount := decimal.RequireFromString("25.50")

	testCases := []struct {
		txType   TransactionType
		expected string
	}{
		{TransactionTypeIncome, "25.50"},
		{TransactionTypeExpense, "-25.50"},
		{TransactionTypeTransfer, "0.00"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.txType), func(t *testing.T) {
			txn := &Transaction{Amount: amount, Type: tc.txType}
			assert.Equal(t, tc.expected, FormatAmount(txn.BalanceEffect()))
		})
	}
}

func TestTransactionIsCategorized(t *testing.T) {
	empty := ""
	id := "cat-1"

	assert.False(t, (&Transaction{}).IsCategorized())
	assert.False(t, (&Transaction{CategoryID: &empty}).IsCategorized())
	assert.True(t, (&Transaction{CategoryID: &id}).IsCategorized())
}

func TestCategoryKeywordList(t *testing.T) {
	kw := " Uber, LYFT ,,taxi "
	c := &Category{Keywords: &kw}
	assert.Equal(t, []string{"uber", "lyft", "taxi"}, c.KeywordList())
	assert.Nil(t, (&Category{}).KeywordList())
}

func TestBudgetCovers(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	b := &Budget{PeriodStart: start, PeriodEnd: end}

	assert.True(t, b.Covers(start))
	assert.True(t, b.Covers(end))
	assert.False(t, b.Covers(end.Add(time.Second)))
}

func TestStatementIsProcessed(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Statement{}).IsProcessed())
	assert.True(t, (&Statement{ProcessedAt: &now}).IsProcessed())
}
