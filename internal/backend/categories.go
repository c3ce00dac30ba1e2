package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/coursehub-web/internal/models"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	return list[models.Category](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/categories",
		endpoint: "/api/categories",
		fallback: "Failed to load categories",
	})
}

// ParentCategories returns the top-level categories.
func (c *Client) ParentCategories(ctx context.Context) ([]models.Category, error) {
	return list[models.Category](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/categories/parents",
		endpoint: "/api/categories/parents",
		fallback: "Failed to load parent categories",
	})
}

// SubCategories returns the children of parentID.
func (c *Client) SubCategories(ctx context.Context, parentID string) ([]models.Category, error) {
	return list[models.Category](ctx, c, request{
		method:   http.MethodGet,
		path:     pathf("/api/categories/%s/subcategories", parentID),
		endpoint: "/api/categories/{id}/subcategories",
		fallback: "Failed to load subcategories",
	})
}

// GetCategory loads one category.
func (c *Client) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return single[models.Category](ctx, c, request{
		method:   http.MethodGet,
		path:     pathf("/api/categories/%s", id),
		endpoint: "/api/categories/{id}",
		fallback: "Category not found",
	}, appErrors.ErrNotFound)
}

// CreateCategory requires an admin token.
func (c *Client) CreateCategory(ctx context.Context, token string, req models.CategoryRequest) (*models.Category, error) {
	return single[models.Category](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/categories",
		endpoint: "/api/categories",
		token:    token,
		body:     req,
		fallback: "Failed to create category",
	}, appErrors.ErrNetwork)
}

// UpdateCategory requires an admin token.
func (c *Client) UpdateCategory(ctx context.Context, token, id string, req models.CategoryRequest) (*models.Category, error) {
	return single[models.Category](ctx, c, request{
		method:   http.MethodPut,
		path:     pathf("/api/categories/%s", id),
		endpoint: "/api/categories/{id}",
		token:    token,
		body:     req,
		fallback: "Failed to update category",
	}, appErrors.ErrNetwork)
}

// DeleteCategory requires an admin token.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	_, err := c.roundTrip(ctx, request{
		method:   http.MethodDelete,
		path:     pathf("/api/categories/%s", id),
		endpoint: "/api/categories/{id}",
		token:    token,
		fallback: "Failed to delete category",
	})
	return err
}

// list decodes an array payload, treating a missing payload as empty.
func list[T any](ctx context.Context, c *Client, req request) ([]T, error) {
	items, err := call[[]T](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []T{}, nil
	}
	return *items, nil
}

// single decodes an object payload; a successful answer without data yields missing.
func single[T any](ctx context.Context, c *Client, req request, missing *appErrors.Error) (*T, error) {
	item, err := call[T](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, appErrors.Clone(missing, req.fallback)
	}
	return item, nil
}
