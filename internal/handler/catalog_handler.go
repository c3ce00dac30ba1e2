package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/search"
	"github.com/noah-isme/coursehub-web/internal/service"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// CategoryLink is a category with its human-readable URL.
type CategoryLink struct {
	models.Category
	Slug string `json:"slug"`
	Path string `json:"path"`
}

// HomeView is the landing page model.
type HomeView struct {
	FeaturedCourses  []models.Course `json:"featuredCourses"`
	ParentCategories []CategoryLink  `json:"parentCategories"`
}

// CatalogView is the course catalog model.
type CatalogView struct {
	Criteria         search.Criteria `json:"criteria"`
	Query            string          `json:"query"`
	Results          []models.Course `json:"results"`
	ParentCategories []CategoryLink  `json:"parentCategories"`
}

// CourseView is the course details model.
type CourseView struct {
	Course    *models.Course `json:"course"`
	CanEnroll bool           `json:"canEnroll"`
}

// CategoryView is the category page model.
type CategoryView struct {
	Category      CategoryLink    `json:"category"`
	SubCategories []CategoryLink  `json:"subCategories"`
	Courses       []models.Course `json:"courses"`
}

// CatalogHandler serves the public catalog pages and enrollment.
type CatalogHandler struct {
	courses    *service.CourseService
	categories *service.CategoryService
}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler(courses *service.CourseService, categories *service.CategoryService) *CatalogHandler {
	return &CatalogHandler{courses: courses, categories: categories}
}

// Home godoc
// @Summary Landing page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	var view HomeView
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		view.FeaturedCourses, err = h.courses.Featured(ctx)
		return err
	})
	g.Go(func() (err error) {
		view.ParentCategories, err = h.parentLinks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, view)
}

// Catalog godoc
// @Summary Course catalog
// @Description Filters mirror the query string; aliases search and category are accepted
// @Tags Pages
// @Produce json
// @Param keyword query string false "Keyword"
// @Param categoryId query string false "Category"
// @Param level query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minRating query number false "Minimum rating"
// @Param language query string false "Language"
// @Param hasCertificate query bool false "Only courses with certificate"
// @Param hasLifetimeAccess query bool false "Only courses with lifetime access"
// @Param sortBy query string false "title, price, averageRating or createdAt"
// @Param sortDirection query string false "asc or desc"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Success 302
// @Router /courses [get]
func (h *CatalogHandler) Catalog(c *gin.Context) {
	criteria, err := search.FromQueryString(c.Request.URL.RawQuery)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "malformed query string"))
		return
	}

	canonical := search.ToQueryString(criteria)
	if middleware.WantsHTML(c) && canonical != c.Request.URL.RawQuery {
		location := c.Request.URL.Path
		if canonical != "" {
			location += "?" + canonical
		}
		c.Redirect(http.StatusFound, location)
		return
	}

	view := CatalogView{Criteria: criteria, Query: canonical}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		view.Results, err = h.courses.Search(ctx, criteria)
		return err
	})
	g.Go(func() (err error) {
		view.ParentCategories, err = h.parentLinks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, view, map[string]interface{}{"query": canonical})
}

// Course godoc
// @Summary Course details
// @Tags Pages
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) Course(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), optionalToken(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	state := sessionState(c)
	canEnroll := state.HasRole(models.RoleStudent) && (course.IsEnrolled == nil || !*course.IsEnrolled)
	response.OK(c, CourseView{Course: course, CanEnroll: canEnroll})
}

// Category godoc
// @Summary Category page
// @Tags Pages
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CatalogHandler) Category(c *gin.Context) {
	id := c.Param("id")

	var (
		category *models.Category
		children []models.Category
		view     CategoryView
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		category, err = h.categories.Get(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		view.Courses, err = h.courses.ByCategory(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		children, err = h.categories.SubCategories(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}

	view.Category = linkCategory(*category)
	view.SubCategories = linkCategories(children)
	response.OK(c, view)
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *CatalogHandler) Enroll(c *gin.Context) {
	token, err := requireToken(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.courses.Enroll(c.Request.Context(), token, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Successfully enrolled in course!", gin.H{"courseId": c.Param("id")})
}

func (h *CatalogHandler) parentLinks(ctx context.Context) ([]CategoryLink, error) {
	parents, err := h.categories.Parents(ctx)
	if err != nil {
		return nil, err
	}
	return linkCategories(parents), nil
}

func linkCategory(category models.Category) CategoryLink {
	s := slug.Make(category.Name)
	path := "/categories/" + category.ID
	if s != "" {
		path += "/" + s
	}
	return CategoryLink{Category: category, Slug: s, Path: path}
}

func linkCategories(categories []models.Category) []CategoryLink {
	links := make([]CategoryLink, 0, len(categories))
	for _, category := range categories {
		links = append(links, linkCategory(category))
	}
	return links
}
