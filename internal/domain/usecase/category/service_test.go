package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	mpers "github.com/amirhossein-jamali/finance-ledger/mocks/port/persistence"
)

func newService(t *testing.T) (*Service, *mpers.MockDelegate[entity.Category]) {
	categories := mpers.NewMockDelegate[entity.Category](t)
	return NewService(persistence.Ledger{Categories: categories}, logger.NewNoopLogger()), categories
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Joins normalized keywords", func(t *testing.T) {
		s, categories := newService(t)
		categories.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool {
			return c.Name == "Coffee" && c.Type == entity.CategoryTypeUser &&
				c.Keywords != nil && *c.Keywords == "cafe,espresso bar"
		})).Return(&entity.Category{ID: "c1", Name: "Coffee"}, nil).Once()

		created, err := s.Create(ctx, usecase.CreateCategoryRequest{
			Name:     " Coffee ",
			Keywords: []string{" Cafe", "", "Espresso Bar "},
		})

		require.NoError(t, err)
		assert.Equal(t, "c1", created.ID)
	})

	t.Run("No keywords stores null", func(t *testing.T) {
		s, categories := newService(t)
		categories.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool {
			return c.Keywords == nil
		})).Return(&entity.Category{ID: "c2"}, nil).Once()

		_, err := s.Create(ctx, usecase.CreateCategoryRequest{Name: "Misc"})
		require.NoError(t, err)
	})

	t.Run("Empty name", func(t *testing.T) {
		s, _ := newService(t)

		_, err := s.Create(ctx, usecase.CreateCategoryRequest{Name: "  "})
		assert.True(t, errs.IsValidationError(err))
	})

	t.Run("Keyword with comma", func(t *testing.T) {
		s, _ := newService(t)

		_, err := s.Create(ctx, usecase.CreateCategoryRequest{Name: "Food", Keywords: []string{"a,b"}})
		assert.True(t, errs.IsValidationError(err))
	})
}

func TestService_List(t *testing.T) {
	s, categories := newService(t)
	categories.On("FindMany", mock.Anything, query.FindArgs{
		OrderBy: []query.OrderBy{query.Asc("type"), query.Asc("name")},
	}).Return([]entity.Category{{ID: "s1", Type: entity.CategoryTypeSystem}, {ID: "u1", Type: entity.CategoryTypeUser}}, nil).Once()

	list, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_Categorizer(t *testing.T) {
	s, categories := newService(t)
	categories.On("FindMany", mock.Anything, query.FindArgs{
		Where: query.Field("keywords", query.NotEquals(query.Null)),
	}).Return([]entity.Category{{ID: "fuel", Type: entity.CategoryTypeSystem, Keywords: keywords("petrol")}}, nil).Once()

	c, err := s.Categorizer(context.Background())

	require.NoError(t, err)
	id, ok := c.Categorize("SHELL PETROL 42")
	assert.True(t, ok)
	assert.Equal(t, "fuel", id)
}
