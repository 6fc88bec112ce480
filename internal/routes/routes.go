package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/hopehands/volunteer-backend/internal/config"
	"github.com/hopehands/volunteer-backend/internal/handlers"
	"github.com/hopehands/volunteer-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	volunteerHandler *handlers.VolunteerHandler,
	importHandler *handlers.ImportHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public signup form
	api.Post("/signup", volunteerHandler.Signup)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Admin review dashboard (JWT + admin required)
	admin := api.Group("/", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/volunteers", volunteerHandler.List)
	admin.Get("/volunteers/:id", volunteerHandler.Get)
	admin.Put("/volunteers/:id", volunteerHandler.Update)
	admin.Patch("/volunteers/:id", volunteerHandler.Update)
	admin.Delete("/volunteers/:id", volunteerHandler.Delete)
	admin.Post("/volunteers/:id/approve", volunteerHandler.Approve)
	admin.Post("/volunteers/:id/reject", volunteerHandler.Reject)
	admin.Post("/volunteers/bulk-import", importHandler.BulkImport)
	admin.Get("/visualizations/role-counts", volunteerHandler.RoleCounts)
}
