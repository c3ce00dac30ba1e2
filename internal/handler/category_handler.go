package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// CategoryHandler forwards admin category management.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new handler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create godoc
// @Summary Create category
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CategoryRequest true "Category"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req models.CategoryRequest
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), token, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Category created successfully!", linkCategory(*category))
}

// Update godoc
// @Summary Update category
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body models.CategoryRequest true "Category"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req models.CategoryRequest
	if !bindJSON(c, &req, "invalid category payload") {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), token, c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Category updated successfully!", linkCategory(*category))
}

// Delete godoc
// @Summary Delete category
// @Tags Admin
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.categories.Delete(c.Request.Context(), token, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Category deleted successfully!", nil)
}
