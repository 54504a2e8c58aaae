package routes

import (
	"solar-proposal-backend/bleve/controllers"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(router fiber.Router, controller *controllers.SearchController, protected fiber.Handler) {
	api := router.Group("/bleve_search", protected)

	api.Get("/proposals", controller.SearchProposalsController)
}
