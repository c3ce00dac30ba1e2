package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/service"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// StudentDashboardView lists the student's courses.
type StudentDashboardView struct {
	User            *models.User    `json:"user"`
	EnrolledCourses []models.Course `json:"enrolledCourses"`
	TotalCourses    int             `json:"totalCourses"`
}

// InstructorStats summarises an instructor's catalog.
type InstructorStats struct {
	TotalCourses     int     `json:"totalCourses"`
	PublishedCourses int     `json:"publishedCourses"`
	TotalStudents    int     `json:"totalStudents"`
	AverageRating    float64 `json:"averageRating"`
}

// InstructorDashboardView lists the instructor's own courses.
type InstructorDashboardView struct {
	User    *models.User    `json:"user"`
	Courses []models.Course `json:"courses"`
	Stats   InstructorStats `json:"stats"`
}

// AdminDashboardView lists the whole catalog.
type AdminDashboardView struct {
	Courses         []models.Course   `json:"courses"`
	Categories      []models.Category `json:"categories"`
	TotalCourses    int               `json:"totalCourses"`
	TotalCategories int               `json:"totalCategories"`
}

// UnauthorizedView explains a role mismatch.
type UnauthorizedView struct {
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Home    string       `json:"home"`
}

// DashboardHandler serves the signed-in pages.
type DashboardHandler struct {
	courses    *service.CourseService
	categories *service.CategoryService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(courses *service.CourseService, categories *service.CategoryService) *DashboardHandler {
	return &DashboardHandler{courses: courses, categories: categories}
}

// Student godoc
// @Summary Student dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Success 302
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	courses, err := h.courses.Enrolled(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, StudentDashboardView{
		User:            sessionState(c).User,
		EnrolledCourses: courses,
		TotalCourses:    len(courses),
	})
}

// Instructor godoc
// @Summary Instructor dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor [get]
func (h *DashboardHandler) Instructor(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	courses, err := h.courses.Mine(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, InstructorDashboardView{
		User:    sessionState(c).User,
		Courses: courses,
		Stats:   instructorStats(courses),
	})
}

// Admin godoc
// @Summary Admin dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	var view AdminDashboardView
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		view.Courses, err = h.courses.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		view.Categories, err = h.categories.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}
	view.TotalCourses = len(view.Courses)
	view.TotalCategories = len(view.Categories)
	response.OK(c, view)
}

// Profile godoc
// @Summary Profile page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *DashboardHandler) Profile(c *gin.Context) {
	response.OK(c, gin.H{"user": sessionState(c).User})
}

// Settings godoc
// @Summary Settings page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *DashboardHandler) Settings(c *gin.Context) {
	response.OK(c, gin.H{"user": sessionState(c).User})
}

// Unauthorized godoc
// @Summary Role mismatch page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /unauthorized [get]
func (h *DashboardHandler) Unauthorized(c *gin.Context) {
	response.OK(c, UnauthorizedView{
		Message: "You do not have permission to view this page.",
		User:    sessionState(c).User,
		Home:    defaultLandingPath,
	})
}

// NotFound sends unknown page requests home, matching the catch-all route of the site.
func (h *DashboardHandler) NotFound(c *gin.Context) {
	if c.Request.Method == http.MethodGet && middleware.WantsHTML(c) {
		c.Redirect(http.StatusFound, defaultLandingPath)
		return
	}
	response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "page not found"))
}

func instructorStats(courses []models.Course) InstructorStats {
	stats := InstructorStats{TotalCourses: len(courses)}
	var ratingSum float64
	rated := 0
	for _, course := range courses {
		if course.IsPublished {
			stats.PublishedCourses++
		}
		stats.TotalStudents += course.EnrolledStudentsCount
		if course.TotalReviews > 0 {
			ratingSum += course.AverageRating
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	return stats
}
