package api

import (
	"time"

	"portal-service/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RateLimit struct {
	Max        int
	Expiration time.Duration
}

func authLimiter(rl RateLimit) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        rl.Max,
		Expiration: rl.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return respondMessage(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	})
}

func SetupRoutes(app *fiber.App, tokens TokenValidator, authHandler *AuthHandler, usuarioHandler *UsuarioHandler, rl RateLimit) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "portal-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	limited := authLimiter(rl)
	app.Post("/register", limited, authHandler.Register)
	app.Post("/login", limited, authHandler.Login)

	auth := AuthMiddleware(tokens)

	usersRoutes := app.Group("/users", auth, RequireRole(model.RolAdmin))
	usersRoutes.Get("/", usuarioHandler.ListUsuarios)
	usersRoutes.Delete("/:id", usuarioHandler.DeleteUsuario)

	profileRoutes := app.Group("/profile", auth)
	profileRoutes.Get("/", usuarioHandler.GetProfile)
	profileRoutes.Put("/", usuarioHandler.UpdateProfile)
	profileRoutes.Post("/photo", usuarioHandler.UpdatePhoto)
	profileRoutes.Post("/photo/upload-url", usuarioHandler.GetPhotoUploadURL)
}
