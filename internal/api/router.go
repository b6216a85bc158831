package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/devcamper/devcamper-api/docs"
	"github.com/devcamper/devcamper-api/internal/api/handler"
	"github.com/devcamper/devcamper-api/internal/api/middleware"
	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

// Deps is everything the HTTP layer needs from the composition root.
type Deps struct {
	Log zerolog.Logger

	JWTSecret string
	Cookie    handler.CookieConfig
	// PublicURL prefixes mailed links. Empty uses the request host.
	PublicURL string

	// Users resolves the account behind a session token.
	Users middleware.UserLookup
	// Limiter backs the per-IP rate limit on /api routes.
	Limiter         middleware.RateCounter
	RateLimitMax    int64
	RateLimitWindow time.Duration

	Auth      ports.AuthService
	Bootcamps ports.BootcampService
	Courses   ports.CourseService
	Reviews   ports.ReviewService
	UserAdmin ports.UserService

	UploadDir string
	MaxUpload int64

	Readiness map[string]handler.Check

	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "devcamper",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Ops endpoints (no auth, no rate limit) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	// --- Dependencies ---
	protect := middleware.Protect(d.JWTSecret, d.Users)
	publishers := middleware.Authorize(domain.RolePublisher, domain.RoleAdmin)
	reviewers := middleware.Authorize(domain.RoleUser, domain.RoleAdmin)
	admins := middleware.Authorize(domain.RoleAdmin)

	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie).WithPublicURL(d.PublicURL)
	bootcampHandler := handler.NewBootcampHandler(d.Bootcamps, d.MaxUpload)
	courseHandler := handler.NewCourseHandler(d.Courses)
	reviewHandler := handler.NewReviewHandler(d.Reviews)
	userHandler := handler.NewUserHandler(d.UserAdmin)

	v1 := e.Group("/api/v1", middleware.RateLimit(d.Limiter, d.RateLimitMax, d.RateLimitWindow, d.Log))

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, protect)
	auth.PUT("/updatedetails", authHandler.UpdateDetails, protect)
	auth.PUT("/updatepassword", authHandler.UpdatePassword, protect)
	auth.POST("/forgotpassword", authHandler.ForgotPassword)
	auth.PUT("/resetpassword/:resettoken", authHandler.ResetPassword)

	// --- Bootcamp routes ---
	bootcamps := v1.Group("/bootcamps")
	bootcamps.GET("", bootcampHandler.List)
	bootcamps.POST("", bootcampHandler.Create, protect, publishers)
	bootcamps.GET("/radius/:zipcode/:distance", bootcampHandler.Radius)
	bootcamps.GET("/:id", bootcampHandler.Get)
	bootcamps.PUT("/:id", bootcampHandler.Update, protect, publishers)
	bootcamps.DELETE("/:id", bootcampHandler.Delete, protect, publishers)
	bootcamps.PUT("/:id/photo", bootcampHandler.UploadPhoto, protect, publishers)

	// Nested resources re-routed from /bootcamps/:bootcampId.
	bootcamps.GET("/:bootcampId/courses", courseHandler.List)
	bootcamps.POST("/:bootcampId/courses", courseHandler.Create, protect, publishers)
	bootcamps.GET("/:bootcampId/reviews", reviewHandler.List)
	bootcamps.POST("/:bootcampId/reviews", reviewHandler.Create, protect, reviewers)

	// --- Course routes ---
	courses := v1.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.PUT("/:id", courseHandler.Update, protect, publishers)
	courses.DELETE("/:id", courseHandler.Delete, protect, publishers)

	// --- Review routes ---
	reviews := v1.Group("/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.PUT("/:id", reviewHandler.Update, protect, reviewers)
	reviews.DELETE("/:id", reviewHandler.Delete, protect, reviewers)

	// --- User admin routes ---
	users := v1.Group("/users", protect, admins)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
