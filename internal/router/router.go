package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/config"
	"github.com/seva-edu/seva-go-api/internal/handler"
	"github.com/seva-edu/seva-go-api/internal/middleware"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	VideoHandler      *handler.VideoHandler
	LiveHandler       *handler.LiveHandler
	CommentHandler    *handler.CommentHandler
	ChatHandler       *handler.ChatHandler
	ModerationHandler *handler.ModerationHandler
	AuditLogHandler   *handler.AuditLogHandler
	CollegeHandler    *handler.CollegeHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CollegeHandler != nil {
		colleges := api.Group("/colleges")
		deps.CollegeHandler.RegisterPublic(colleges)
	}

	if deps.VideoHandler != nil {
		videos := api.Group("/videos", jwtMiddleware)
		deps.VideoHandler.Register(videos)
		if deps.CommentHandler != nil {
			deps.CommentHandler.RegisterVideoRoutes(videos)
		}
	}

	if deps.LiveHandler != nil {
		lives := api.Group("/lives", jwtMiddleware)
		deps.LiveHandler.Register(lives)
		if deps.CommentHandler != nil {
			deps.CommentHandler.RegisterLiveRoutes(lives)
		}
		if deps.ChatHandler != nil {
			deps.ChatHandler.Register(lives)
		}
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleCollegeAdmin, models.RolePlatformAdmin))
	if deps.ModerationHandler != nil {
		moderation := admin.Group("/moderation", middleware.RequireCapability(authz.CapPolicyManage))
		deps.ModerationHandler.Register(moderation)
	}
	if deps.AuditLogHandler != nil {
		auditLogs := admin.Group("/audit-logs")
		deps.AuditLogHandler.Register(auditLogs)
	}
	if deps.CollegeHandler != nil {
		adminColleges := admin.Group("/colleges", middleware.RequireCapability(authz.CapCollegeAdmin))
		deps.CollegeHandler.RegisterAdmin(adminColleges)
	}
}
