package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/studymate/auth-backend/internal/handlers"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Health *handlers.HealthHandler
}

type Options struct {
	// Protected guards routes that need a live access token.
	Protected fiber.Handler
	// LimiterStorage shares rate-limit counters across instances; nil keeps
	// them in process memory.
	LimiterStorage fiber.Storage
	APIRateLimit   int
	AuthRateLimit  int
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	api := app.Group("/api")
	api.Use(rateLimit(opts.APIRateLimit, opts.LimiterStorage, "api:"))

	api.Get("/health", h.Health.Check)

	auth := api.Group("/auth")
	auth.Use(rateLimit(opts.AuthRateLimit, opts.LimiterStorage, "auth:"))
	auth.Post("/login", h.Auth.Login)
	auth.Get("/naver-login", h.Auth.NaverLogin)
	auth.Get("/kakao-login", h.Auth.KakaoLogin)
	auth.Post("/send-code", h.Auth.SendCode)
	auth.Post("/verify-code", h.Auth.VerifyCode)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/check-username", h.Auth.CheckUsername)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Get("/user-info", opts.Protected, h.Auth.UserInfo)
	auth.Post("/logout", opts.Protected, h.Auth.Logout)

	user := api.Group("/user", opts.Protected)
	user.Post("/update-user", h.User.UpdateUser)
	user.Get("/getUsername", h.User.GetUsername)
	user.Delete("/delete-user", h.User.DeleteUser)
}

// rateLimit allows limit requests per IP per minute. A non-positive limit
// disables the limiter.
func rateLimit(limit int, storage fiber.Storage, prefix string) fiber.Handler {
	if limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               limit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           storage,
		KeyGenerator:      func(c *fiber.Ctx) string { return prefix + c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
			})
		},
	})
}
