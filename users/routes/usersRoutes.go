package router

import (
	"solar-proposal-backend/users/controllers"

	"github.com/gofiber/fiber/v2"
)

// InitRoutes mounts the auth endpoints. loginLimiter guards only the login.
func InitRoutes(router fiber.Router, controller *controllers.AuthController, protected fiber.Handler, loginLimiter fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/login", loginLimiter, controller.LoginUser)
	auth.Get("/status", controller.AuthStatus)
	auth.Post("/logout", protected, controller.LogoutUser)
}
