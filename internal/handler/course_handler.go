package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// CourseHandler forwards instructor course management.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler creates a new handler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Create godoc
// @Summary Create course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body models.CourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), token, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Course created successfully!", course)
}

// Update godoc
// @Summary Update course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), token, c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Course updated successfully!", course)
}

// Delete godoc
// @Summary Delete course
// @Tags Instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.courses.Delete(c.Request.Context(), token, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Course deleted successfully!", nil)
}
