package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/search"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// ListCourses returns all published courses.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/courses",
		endpoint: "/api/courses",
		fallback: "Failed to load courses",
	})
}

// GetCourse loads one course. The token is optional and lets the backend fill isEnrolled.
func (c *Client) GetCourse(ctx context.Context, token, id string) (*models.Course, error) {
	return single[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     pathf("/api/courses/%s", id),
		endpoint: "/api/courses/{id}",
		token:    token,
		fallback: "Course not found",
	}, appErrors.ErrNotFound)
}

// SearchCourses posts the criteria as the search body.
func (c *Client) SearchCourses(ctx context.Context, criteria search.Criteria) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/courses/search",
		endpoint: "/api/courses/search",
		body:     criteria,
		fallback: "Failed to search courses",
	})
}

// FeaturedCourses returns courses flagged as featured.
func (c *Client) FeaturedCourses(ctx context.Context) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/courses/featured",
		endpoint: "/api/courses/featured",
		fallback: "Failed to load featured courses",
	})
}

// CoursesByCategory returns the courses filed under categoryID.
func (c *Client) CoursesByCategory(ctx context.Context, categoryID string) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     pathf("/api/courses/category/%s", categoryID),
		endpoint: "/api/courses/category/{id}",
		fallback: "Failed to load category courses",
	})
}

// MyCourses returns the courses authored by the token's instructor.
func (c *Client) MyCourses(ctx context.Context, token string) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/courses/my-courses",
		endpoint: "/api/courses/my-courses",
		token:    token,
		fallback: "Failed to load my courses",
	})
}

// EnrolledCourses returns the courses the token's student is enrolled in.
func (c *Client) EnrolledCourses(ctx context.Context, token string) ([]models.Course, error) {
	return list[models.Course](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/courses/enrolled",
		endpoint: "/api/courses/enrolled",
		token:    token,
		fallback: "Failed to load enrolled courses",
	})
}

// CreateCourse requires an instructor token.
func (c *Client) CreateCourse(ctx context.Context, token string, req models.CourseRequest) (*models.Course, error) {
	return single[models.Course](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/courses",
		endpoint: "/api/courses",
		token:    token,
		body:     req,
		fallback: "Failed to create course",
	}, appErrors.ErrNetwork)
}

// UpdateCourse requires an instructor token.
func (c *Client) UpdateCourse(ctx context.Context, token, id string, req models.CourseRequest) (*models.Course, error) {
	return single[models.Course](ctx, c, request{
		method:   http.MethodPut,
		path:     pathf("/api/courses/%s", id),
		endpoint: "/api/courses/{id}",
		token:    token,
		body:     req,
		fallback: "Failed to update course",
	}, appErrors.ErrNetwork)
}

// DeleteCourse requires an instructor token.
func (c *Client) DeleteCourse(ctx context.Context, token, id string) error {
	_, err := c.roundTrip(ctx, request{
		method:   http.MethodDelete,
		path:     pathf("/api/courses/%s", id),
		endpoint: "/api/courses/{id}",
		token:    token,
		fallback: "Failed to delete course",
	})
	return err
}

// Enroll enrolls the token's student in courseID.
func (c *Client) Enroll(ctx context.Context, token, courseID string) error {
	_, err := c.roundTrip(ctx, request{
		method:   http.MethodPost,
		path:     pathf("/api/courses/%s/enroll", courseID),
		endpoint: "/api/courses/{id}/enroll",
		token:    token,
		fallback: "Failed to enroll in course",
	})
	return err
}
