package category

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// Service manages categories and builds categorizers from them
type Service struct {
	categories persistence.Delegate[entity.Category]
	logger     coreport.Logger
}

var _ usecase.CategoryUseCase = (*Service)(nil)

// NewService creates a new category Service
func NewService(ledger persistence.Ledger, logger coreport.Logger) *Service {
	return &Service{categories: ledger.Categories, logger: logger}
}

// List returns every category, system categories first
func (s *Service) List(ctx context.Context) ([]entity.Category, error) {
	// "system" sorts before "user"
	return s.categories.FindMany(ctx, query.FindArgs{
		OrderBy: []query.OrderBy{query.Asc("type"), query.Asc("name")},
	})
}

// Create adds a user category
func (s *Service) Create(ctx context.Context, req usecase.CreateCategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.NewValidationError("Category", "create", "name", "name must not be empty")
	}

	var keywords []string
	for _, kw := range req.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(kw, ",") {
			return nil, errs.NewValidationError("Category", "create", "keywords", "keyword %q must not contain a comma", kw)
		}
		keywords = append(keywords, kw)
	}

	category := &entity.Category{Name: name, Type: entity.CategoryTypeUser}
	if len(keywords) > 0 {
		joined := strings.Join(keywords, ",")
		category.Keywords = &joined
	}

	created, err := s.categories.Create(ctx, category)
	if err != nil {
		s.logger.Error("Failed to create category", map[string]any{
			"name":  name,
			"error": err.Error(),
		})
		return nil, err
	}
	s.logger.Info("Category created", map[string]any{"categoryId": created.ID, "keywords": len(keywords)})
	return created, nil
}

// Categorizer loads the categories that carry keywords and builds a
// Categorizer over them
func (s *Service) Categorizer(ctx context.Context) (*Categorizer, error) {
	categories, err := s.categories.FindMany(ctx, query.FindArgs{
		Where: query.Field("keywords", query.NotEquals(query.Null)),
	})
	if err != nil {
		return nil, err
	}
	return NewCategorizer(categories), nil
}
