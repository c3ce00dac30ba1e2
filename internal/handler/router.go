package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-web/internal/guard"
	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursehub-web/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursehub-web/pkg/middleware/requestid"
)

// RouterConfig collects everything the gateway routes depend on.
type RouterConfig struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Registry       *service.SessionRegistry
	Courses        *service.CourseService
	Categories     *service.CategoryService
	Session        middleware.SessionOptions
	AllowedOrigins []string
	ReadyChecks    map[string]Pinger
	EnableMetrics  bool
	EnableDocs     bool
}

// NewRouter builds the gateway engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if cfg.EnableMetrics {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))

	metricsHandler := NewMetricsHandler(cfg.Metrics, cfg.ReadyChecks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.EnableMetrics {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	sessionHandler := NewSessionHandler()
	catalogHandler := NewCatalogHandler(cfg.Courses, cfg.Categories)
	dashboardHandler := NewDashboardHandler(cfg.Courses, cfg.Categories)
	courseHandler := NewCourseHandler(cfg.Courses)
	categoryHandler := NewCategoryHandler(cfg.Categories)

	site := r.Group("/")
	site.Use(middleware.Session(cfg.Registry, cfg.Session))

	site.GET("/", catalogHandler.Home)
	site.GET("/courses", catalogHandler.Catalog)
	site.GET("/courses/:id", catalogHandler.Course)
	site.GET("/categories/:id", catalogHandler.Category)
	site.GET("/categories/:id/:slug", catalogHandler.Category)
	site.GET("/login", sessionHandler.LoginView)
	site.GET("/register", sessionHandler.RegisterView)
	site.GET("/unauthorized", dashboardHandler.Unauthorized)

	sessionAPI := site.Group("/session")
	sessionAPI.GET("", sessionHandler.Current)
	sessionAPI.POST("/login", sessionHandler.Login)
	sessionAPI.POST("/register", sessionHandler.Register)
	sessionAPI.POST("/logout", sessionHandler.Logout)

	signedIn := middleware.Guard(guard.Authenticated)
	site.GET("/dashboard", signedIn, dashboardHandler.Student)
	site.GET("/profile", signedIn, dashboardHandler.Profile)
	site.GET("/settings", signedIn, dashboardHandler.Settings)
	site.POST("/courses/:id/enroll", signedIn, catalogHandler.Enroll)

	instructor := site.Group("/instructor")
	instructor.Use(middleware.Guard(guard.RequireRole(models.RoleInstructor)))
	instructor.GET("", dashboardHandler.Instructor)
	instructor.POST("/courses", courseHandler.Create)
	instructor.PUT("/courses/:id", courseHandler.Update)
	instructor.DELETE("/courses/:id", courseHandler.Delete)

	admin := site.Group("/admin")
	admin.Use(middleware.Guard(guard.RequireRole(models.RoleAdmin)))
	admin.GET("", dashboardHandler.Admin)
	admin.POST("/categories", categoryHandler.Create)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.DELETE("/categories/:id", categoryHandler.Delete)

	r.NoRoute(dashboardHandler.NotFound)

	return r
}
