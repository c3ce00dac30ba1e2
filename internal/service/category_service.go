package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-web/internal/models"
)

const categoryCachePrefix = "categories:"

// CategoryAPI is the category slice of the marketplace API.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ParentCategories(ctx context.Context) ([]models.Category, error)
	SubCategories(ctx context.Context, parentID string) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, token string, req models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, token, id string, req models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
}

// CategoryService serves category reads through the catalog cache and forwards admin
// writes, invalidating cached category data afterwards.
type CategoryService struct {
	api       CategoryAPI
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewCategoryService constructs a CategoryService. cache may be nil.
func NewCategoryService(api CategoryAPI, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CategoryService{api: api, cache: cache, validator: validate, logger: logger, ttl: ttl}
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s.cache, categoryCachePrefix+"all", s.ttl, s.api.ListCategories)
}

// Parents returns the top-level categories.
func (s *CategoryService) Parents(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s.cache, categoryCachePrefix+"parents", s.ttl, s.api.ParentCategories)
}

// SubCategories returns the children of parentID.
func (s *CategoryService) SubCategories(ctx context.Context, parentID string) ([]models.Category, error) {
	return cached(ctx, s.cache, categoryCachePrefix+"children:"+parentID, s.ttl, func(ctx context.Context) ([]models.Category, error) {
		return s.api.SubCategories(ctx, parentID)
	})
}

// Get loads one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return cached(ctx, s.cache, categoryCachePrefix+"id:"+id, s.ttl, func(ctx context.Context) (*models.Category, error) {
		return s.api.GetCategory(ctx, id)
	})
}

// Create validates and forwards a new category.
func (s *CategoryService) Create(ctx context.Context, token string, req models.CategoryRequest) (*models.Category, error) {
	if err := validatePayload(s.validator, req, "invalid category payload"); err != nil {
		return nil, err
	}
	category, err := s.api.CreateCategory(ctx, token, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// Update validates and forwards a category change.
func (s *CategoryService) Update(ctx context.Context, token, id string, req models.CategoryRequest) (*models.Category, error) {
	if err := validatePayload(s.validator, req, "invalid category payload"); err != nil {
		return nil, err
	}
	category, err := s.api.UpdateCategory(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteCategory(ctx, token, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, categoryCachePrefix+"*")
	// course listings embed category names
	s.cache.Invalidate(ctx, courseCachePrefix+"*")
}

// cached serves key from cache or loads and stores it. Cache failures fall through to load.
func cached[T any](ctx context.Context, cache *CacheService, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var value T
	if cache.Get(ctx, key, &value) {
		return value, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	cache.Set(ctx, key, value, ttl)
	return value, nil
}
