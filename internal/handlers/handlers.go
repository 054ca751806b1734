package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"estatescout/internal/middleware"
	"estatescout/internal/models"
	"estatescout/internal/service"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Properties *service.PropertyService
}

// Checks are the dependencies reported by the health endpoint. Nil entries
// are reported as disabled.
type Checks struct {
	Database Pinger
	Cache    Pinger
	Storage  Pinger
}

type HandlerSet struct {
	log         zerolog.Logger
	environment string
	auth        *service.AuthService
	users       *service.UserService
	properties  *service.PropertyService
	checks      Checks
}

func NewHandlerSet(log zerolog.Logger, environment string, services Services, checks Checks) HandlerSet {
	return HandlerSet{
		log:         log,
		environment: environment,
		auth:        services.Auth,
		users:       services.Users,
		properties:  services.Properties,
		checks:      checks,
	}
}

// Routes mounts every endpoint on router.
func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	requireAuth := middleware.Auth(h.auth)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/refresh", h.Refresh)

		auth.GET("/me", requireAuth, h.Me)
		auth.GET("/:id", h.GetProfile)
		auth.PUT("/:id", requireAuth, h.UpdateProfile)
		auth.DELETE("/:id", requireAuth, h.DeleteUser)
	}

	properties := router.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.POST("", requireAuth, h.CreateProperty)
		properties.PUT("/:id", requireAuth, h.UpdateProperty)
		properties.DELETE("/:id", requireAuth, h.DeleteProperty)
	}

	admin := router.Group("/admin", requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("/sweep", h.SweepOrphans)
	}
}
