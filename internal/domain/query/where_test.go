package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereWith(t *testing.T) {
	base := Field("userId", Equals("u1"))

	scoped := base.With("type", Equals("expense"))
	require.Len(t, scoped.Fields, 2)
	assert.Len(t, base.Fields, 1, "With must not mutate the receiver")

	again := scoped.With("userId", Equals("u2"))
	assert.Equal(t, Equals("u1"), again.Fields["userId"])
	require.Len(t, again.AND, 1)
	assert.Equal(t, Equals("u2"), again.AND[0].Fields["userId"])
}

func TestWhereIsEmpty(t *testing.T) {
	assert.True(t, Where{}.IsEmpty())
	assert.False(t, Or(Field("a", Equals(1))).IsEmpty())
}

func TestNullSentinel(t *testing.T) {
	assert.True(t, IsNull(Null))
	assert.False(t, IsNull(nil))
	assert.False(t, IsNull("null"))
}

func TestUniqueBy(t *testing.T) {
	w := UniqueBy(map[string]any{"budgetId": "b1", "categoryId": "c1"})
	assert.Equal(t, Equals("b1"), w.Fields["budgetId"])
	assert.Equal(t, Equals("c1"), w.Fields["categoryId"])
}

func TestFilterHelpers(t *testing.T) {
	f := Contains("coffee").Insensitive()
	require.NotNil(t, f.Contains)
	assert.Equal(t, "coffee", *f.Contains)
	assert.Equal(t, ModeInsensitive, f.Mode)

	ne := NotEquals(Null)
	require.NotNil(t, ne.Not)
	assert.True(t, IsNull(ne.Not.Equals))

	b := Between(1, 5)
	assert.Equal(t, 1, b.Gte)
	assert.Equal(t, 5, b.Lte)
}

func TestOrderByReversed(t *testing.T) {
	o := Desc("date").NullsLast()
	r := o.Reversed()
	assert.Equal(t, SortAsc, r.Sort)
	assert.Equal(t, NullsFirst, r.Nulls)
	assert.Equal(t, o, r.Reversed())

	assert.Equal(t, SortDesc, OrderBy{Field: "id"}.Reversed().Sort)
}
