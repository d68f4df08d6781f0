package server

import (
	"context"
	"net/http"
	"time"

	"catty_srv/internal/auth"
	"catty_srv/internal/config"
	"catty_srv/internal/models"
	"catty_srv/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// userContextKey is where the bearer middleware stores the resolved user.
const userContextKey = "auth.user"

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	auth      *service.AuthService
	templates *service.TemplateService
	files     *service.FileService
	tokens    *auth.TokenManager
	logger    *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	authService *service.AuthService,
	templateService *service.TemplateService,
	fileService *service.FileService,
	tokens *auth.TokenManager,
	logger *logrus.Logger,
) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	if cfg.Server.Debug {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human} ${error}\n",
		}))
	}

	server := &Server{
		echo:      e,
		auth:      authService,
		templates: templateService,
		files:     fileService,
		tokens:    tokens,
		logger:    logger,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.POST("/google", s.googleLogin)
			authGroup.GET("/me", s.me, s.requireUser)
		}

		admin := api.Group("/admin", s.requireUser, s.requireAdmin)
		{
			admin.GET("/ping", s.adminPing)
		}

		api.GET("/templates", s.listTemplates, s.requireUser)

		files := api.Group("/files", s.requireUser)
		{
			files.GET("", s.listFiles)
			files.POST("", s.createFile)
			files.GET("/:id", s.getFile)
			files.PUT("/:id", s.updateFile)
			files.DELETE("/:id", s.deleteFile)
			files.GET("/:id/export", s.exportFile)
		}

		// Public sharing link, no authentication.
		api.GET("/share/:token", s.getSharedFile)
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "catty-service",
	})
}

// requireUser authenticates the bearer token and stores the user in context
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Missing bearer token",
			})
		}

		subject, err := s.tokens.Parse(header[len(prefix):])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Invalid token",
			})
		}

		user, err := s.auth.GetUser(c.Request().Context(), subject)
		if err != nil {
			return s.serviceError(c, err, "Failed to resolve user")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// requireAdmin rejects non-administrators
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.currentUser(c).IsAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Admin only",
			})
		}
		return next(c)
	}
}

func (s *Server) currentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// serviceError maps a service error to its client-facing status
func (s *Server) serviceError(c echo.Context, err error, logMsg string) error {
	status := http.StatusInternalServerError
	switch {
	case service.IsValidation(err):
		status = http.StatusBadRequest
	case service.IsUnauthorized(err):
		status = http.StatusUnauthorized
	case service.IsPermission(err):
		status = http.StatusForbidden
	case service.IsNotFound(err):
		status = http.StatusNotFound
	case service.IsConflict(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error(logMsg)
		return c.JSON(status, map[string]string{"error": logMsg})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
