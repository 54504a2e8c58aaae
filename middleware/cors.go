package middleware

import (
	"solar-proposal-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// InitCors applies CORS settings to the app
func InitCors(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnvDefault("FRONTEND_ORIGIN", "http://localhost:5173"),
		AllowMethods:     "GET,POST,HEAD,DELETE",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, Cookie",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
	}))
}
