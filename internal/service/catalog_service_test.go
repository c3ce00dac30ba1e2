package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/repository"
	"github.com/noah-isme/coursehub-web/internal/search"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

type fakeCatalogAPI struct {
	calls      map[string]int
	categories []models.Category
	courses    []models.Course
	lastSearch search.Criteria
	lastToken  string
	err        error
}

func newFakeCatalogAPI() *fakeCatalogAPI {
	return &fakeCatalogAPI{
		calls:      map[string]int{},
		categories: []models.Category{{ID: "cat-1", Name: "Programming"}},
		courses:    []models.Course{{ID: "c1", Title: "Go Basics", CategoryID: "cat-1"}},
	}
}

func (f *fakeCatalogAPI) hit(name string) error {
	f.calls[name]++
	return f.err
}

func (f *fakeCatalogAPI) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, f.hit("ListCategories")
}

func (f *fakeCatalogAPI) ParentCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, f.hit("ParentCategories")
}

func (f *fakeCatalogAPI) SubCategories(ctx context.Context, parentID string) ([]models.Category, error) {
	return []models.Category{}, f.hit("SubCategories")
}

func (f *fakeCatalogAPI) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if err := f.hit("GetCategory"); err != nil {
		return nil, err
	}
	return &f.categories[0], nil
}

func (f *fakeCatalogAPI) CreateCategory(ctx context.Context, token string, req models.CategoryRequest) (*models.Category, error) {
	f.lastToken = token
	if err := f.hit("CreateCategory"); err != nil {
		return nil, err
	}
	return &models.Category{ID: "cat-2", Name: req.Name}, nil
}

func (f *fakeCatalogAPI) UpdateCategory(ctx context.Context, token, id string, req models.CategoryRequest) (*models.Category, error) {
	f.lastToken = token
	if err := f.hit("UpdateCategory"); err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: req.Name}, nil
}

func (f *fakeCatalogAPI) DeleteCategory(ctx context.Context, token, id string) error {
	f.lastToken = token
	return f.hit("DeleteCategory")
}

func (f *fakeCatalogAPI) ListCourses(ctx context.Context) ([]models.Course, error) {
	return f.courses, f.hit("ListCourses")
}

func (f *fakeCatalogAPI) GetCourse(ctx context.Context, token, id string) (*models.Course, error) {
	f.lastToken = token
	if err := f.hit("GetCourse"); err != nil {
		return nil, err
	}
	course := f.courses[0]
	return &course, nil
}

func (f *fakeCatalogAPI) SearchCourses(ctx context.Context, criteria search.Criteria) ([]models.Course, error) {
	f.lastSearch = criteria
	return f.courses, f.hit("SearchCourses")
}

func (f *fakeCatalogAPI) FeaturedCourses(ctx context.Context) ([]models.Course, error) {
	return f.courses, f.hit("FeaturedCourses")
}

func (f *fakeCatalogAPI) CoursesByCategory(ctx context.Context, categoryID string) ([]models.Course, error) {
	return f.courses, f.hit("CoursesByCategory")
}

func (f *fakeCatalogAPI) MyCourses(ctx context.Context, token string) ([]models.Course, error) {
	f.lastToken = token
	return f.courses, f.hit("MyCourses")
}

func (f *fakeCatalogAPI) EnrolledCourses(ctx context.Context, token string) ([]models.Course, error) {
	f.lastToken = token
	return f.courses, f.hit("EnrolledCourses")
}

func (f *fakeCatalogAPI) CreateCourse(ctx context.Context, token string, req models.CourseRequest) (*models.Course, error) {
	f.lastToken = token
	if err := f.hit("CreateCourse"); err != nil {
		return nil, err
	}
	return &models.Course{ID: "c2", Title: req.Title}, nil
}

func (f *fakeCatalogAPI) UpdateCourse(ctx context.Context, token, id string, req models.CourseRequest) (*models.Course, error) {
	f.lastToken = token
	if err := f.hit("UpdateCourse"); err != nil {
		return nil, err
	}
	return &models.Course{ID: id, Title: req.Title}, nil
}

func (f *fakeCatalogAPI) DeleteCourse(ctx context.Context, token, id string) error {
	f.lastToken = token
	return f.hit("DeleteCourse")
}

func (f *fakeCatalogAPI) Enroll(ctx context.Context, token, courseID string) error {
	f.lastToken = token
	return f.hit("Enroll")
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis, *MetricsService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	metrics := NewMetricsService()
	repo := repository.NewCacheRepository(client, "test:cache", nil)
	return NewCacheService(repo, metrics, time.Minute, nil, true), mr, metrics
}

func validCourseRequest() models.CourseRequest {
	return models.CourseRequest{
		Title:            "Go Basics",
		Description:      "Learn Go",
		ShortDescription: "Go",
		CategoryID:       "cat-1",
		Level:            models.LevelBeginner,
		Language:         "English",
	}
}

func TestCategoryParentsServedFromCache(t *testing.T) {
	cache, _, metrics := newTestCache(t)
	api := newFakeCatalogAPI()
	svc := NewCategoryService(api, cache, nil, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		categories, err := svc.Parents(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 1)
	}
	assert.Equal(t, 1, api.calls["ParentCategories"])
	assert.InDelta(t, 2.0/3.0, metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestCategoryWritesInvalidateCache(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	api := newFakeCatalogAPI()
	svc := NewCategoryService(api, cache, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Parents(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("test:cache:categories:parents"))

	created, err := svc.Create(ctx, "admin-token", models.CategoryRequest{Name: "Design"})
	require.NoError(t, err)
	assert.Equal(t, "Design", created.Name)
	assert.Equal(t, "admin-token", api.lastToken)
	assert.False(t, mr.Exists("test:cache:categories:parents"))

	_, err = svc.Parents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls["ParentCategories"])
}

func TestCategoryCreateValidatesPayload(t *testing.T) {
	api := newFakeCatalogAPI()
	svc := NewCategoryService(api, nil, nil, nil, time.Minute)

	_, err := svc.Create(context.Background(), "tok", models.CategoryRequest{Name: "x"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "name")
	assert.Zero(t, api.calls["CreateCategory"])
}

func TestCategoryErrorsAreNotCached(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	api := newFakeCatalogAPI()
	api.err = appErrors.Clone(appErrors.ErrNetwork, "Failed to load categories")
	svc := NewCategoryService(api, cache, nil, nil, time.Minute)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCourseSearchAppliesDefaultsAndCaches(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	api := newFakeCatalogAPI()
	svc := NewCourseService(api, cache, nil, nil, time.Minute)
	ctx := context.Background()

	keyword := "go"
	criteria := search.Criteria{Keyword: &keyword}
	for i := 0; i < 2; i++ {
		courses, err := svc.Search(ctx, criteria)
		require.NoError(t, err)
		require.Len(t, courses, 1)
	}

	assert.Equal(t, 1, api.calls["SearchCourses"])
	require.NotNil(t, api.lastSearch.Size)
	assert.Equal(t, search.DefaultSize, *api.lastSearch.Size)
	assert.Nil(t, criteria.Size)
	assert.True(t, mr.Exists("test:cache:courses:search:keyword=go&page=0&size=20&sortBy=createdAt&sortDirection=desc"))
}

func TestCourseGetWithTokenBypassesCache(t *testing.T) {
	cache, _, _ := newTestCache(t)
	api := newFakeCatalogAPI()
	svc := NewCourseService(api, cache, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Get(ctx, "", "c1")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["GetCourse"])

	_, err = svc.Get(ctx, "student-token", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls["GetCourse"])
	assert.Equal(t, "student-token", api.lastToken)
}

func TestCourseEnrollInvalidatesDetail(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	api := newFakeCatalogAPI()
	svc := NewCourseService(api, cache, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.Get(ctx, "", "c1")
	require.NoError(t, err)
	require.True(t, mr.Exists("test:cache:courses:id:c1"))

	require.NoError(t, svc.Enroll(ctx, "tok", "c1"))
	assert.False(t, mr.Exists("test:cache:courses:id:c1"))
}

func TestCourseCreateAndUpdate(t *testing.T) {
	api := newFakeCatalogAPI()
	svc := NewCourseService(api, nil, nil, nil, time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx, "inst-token", validCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)

	req := validCourseRequest()
	req.Level = "EXPERT"
	_, err = svc.Update(ctx, "inst-token", "c2", req)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "must be one of BEGINNER, INTERMEDIATE, ADVANCED", appErr.Fields["level"])
	assert.Zero(t, api.calls["UpdateCourse"])
}

func TestCacheServiceDisabled(t *testing.T) {
	cache := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, cache.Enabled())

	var out []string
	assert.False(t, cache.Get(context.Background(), "k", &out))
	cache.Set(context.Background(), "k", []string{"v"}, 0)
	cache.Invalidate(context.Background(), "*")
}
