package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassifier_Classify(t *testing.T) {
	c := NewErrorClassifier()
	tests := []struct {
		msg  string
		want ErrorType
	}{
		{`ERROR: duplicate key value violates unique constraint "idx_users_email"`, DuplicateKeyError},
		{`insert on table "transactions" violates foreign key constraint "transactions_category_id_fkey"`, ForeignKeyError},
		{`null value in column "name" violates not-null constraint`, NotNullError},
		{`new row violates check constraint "transactions_amount_check"`, ConstraintError},
		{"could not serialize access due to concurrent update", LockError},
		{"read tcp 10.0.0.2:5432: i/o timeout", ConnectionError},
		{"unexpected EOF", ConnectionError},
		{"something else", ""},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(errors.New(tt.msg)))
		})
	}

	assert.Equal(t, ErrorType(""), c.Classify(nil))
	assert.True(t, c.IsConstraintError(errors.New("violates foreign key constraint")))
	assert.False(t, c.IsConnectionError(errors.New("deadlock detected")))
}
