package models

import "time"

// Category mirrors the backend category resource.
type Category struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	ParentCategoryID   string    `json:"parentCategoryId,omitempty"`
	ParentCategoryName string    `json:"parentCategoryName,omitempty"`
	HasSubCategories   bool      `json:"hasSubCategories"`
	SubCategoriesCount int       `json:"subCategoriesCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=100"`
	Description      string `json:"description,omitempty" validate:"max=500"`
	ParentCategoryID string `json:"parentCategoryId,omitempty"`
}
