package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/search"
)

const courseCachePrefix = "courses:"

// CourseAPI is the course slice of the marketplace API.
type CourseAPI interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, token, id string) (*models.Course, error)
	SearchCourses(ctx context.Context, criteria search.Criteria) ([]models.Course, error)
	FeaturedCourses(ctx context.Context) ([]models.Course, error)
	CoursesByCategory(ctx context.Context, categoryID string) ([]models.Course, error)
	MyCourses(ctx context.Context, token string) ([]models.Course, error)
	EnrolledCourses(ctx context.Context, token string) ([]models.Course, error)
	CreateCourse(ctx context.Context, token string, req models.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, token, id string, req models.CourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, token, id string) error
	Enroll(ctx context.Context, token, courseID string) error
}

// CourseService serves public course reads through the catalog cache. Reads made with a
// token are personalised by the backend and bypass the cache.
type CourseService struct {
	api       CourseAPI
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewCourseService constructs a CourseService. cache may be nil.
func NewCourseService(api CourseAPI, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &CourseService{api: api, cache: cache, validator: validate, logger: logger, ttl: ttl}
}

// List returns all published courses.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	return cached(ctx, s.cache, courseCachePrefix+"all", s.ttl, s.api.ListCourses)
}

// Featured returns featured courses.
func (s *CourseService) Featured(ctx context.Context) ([]models.Course, error) {
	return cached(ctx, s.cache, courseCachePrefix+"featured", s.ttl, s.api.FeaturedCourses)
}

// ByCategory returns the courses of a category.
func (s *CourseService) ByCategory(ctx context.Context, categoryID string) ([]models.Course, error) {
	return cached(ctx, s.cache, courseCachePrefix+"category:"+categoryID, s.ttl, func(ctx context.Context) ([]models.Course, error) {
		return s.api.CoursesByCategory(ctx, categoryID)
	})
}

// Search runs criteria with defaults applied. Results are cached by canonical query.
func (s *CourseService) Search(ctx context.Context, criteria search.Criteria) ([]models.Course, error) {
	request := criteria.WithDefaults()
	key := courseCachePrefix + "search:" + search.ToQueryString(request)
	return cached(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]models.Course, error) {
		return s.api.SearchCourses(ctx, request)
	})
}

// Get loads one course; token may be empty for anonymous visitors.
func (s *CourseService) Get(ctx context.Context, token, id string) (*models.Course, error) {
	if token != "" {
		return s.api.GetCourse(ctx, token, id)
	}
	return cached(ctx, s.cache, courseCachePrefix+"id:"+id, s.ttl, func(ctx context.Context) (*models.Course, error) {
		return s.api.GetCourse(ctx, "", id)
	})
}

// Mine returns the instructor's own courses.
func (s *CourseService) Mine(ctx context.Context, token string) ([]models.Course, error) {
	return s.api.MyCourses(ctx, token)
}

// Enrolled returns the student's courses.
func (s *CourseService) Enrolled(ctx context.Context, token string) ([]models.Course, error) {
	return s.api.EnrolledCourses(ctx, token)
}

// Enroll enrolls the signed-in student in courseID.
func (s *CourseService) Enroll(ctx context.Context, token, courseID string) error {
	if err := s.api.Enroll(ctx, token, courseID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, courseCachePrefix+"id:"+courseID)
	return nil
}

// Create validates and forwards a new course.
func (s *CourseService) Create(ctx context.Context, token string, req models.CourseRequest) (*models.Course, error) {
	if err := validatePayload(s.validator, req, "invalid course payload"); err != nil {
		return nil, err
	}
	course, err := s.api.CreateCourse(ctx, token, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, courseCachePrefix+"*")
	return course, nil
}

// Update validates and forwards a course change.
func (s *CourseService) Update(ctx context.Context, token, id string, req models.CourseRequest) (*models.Course, error) {
	if err := validatePayload(s.validator, req, "invalid course payload"); err != nil {
		return nil, err
	}
	course, err := s.api.UpdateCourse(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, courseCachePrefix+"*")
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteCourse(ctx, token, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, courseCachePrefix+"*")
	return nil
}
