package routes

import (
	"solar-proposal-backend/proposals/controllers"

	"github.com/gofiber/fiber/v2"
)

func ProposalRouterInit(router fiber.Router, controller *controllers.ProposalController, protected fiber.Handler) {
	proposals := router.Group("/proposals", protected)

	proposals.Get("/", controller.ListProposals)
	proposals.Post("/", controller.CreateProposal)
	// Registered before /:id so the literal path wins.
	proposals.Get("/export.xlsx", controller.ExportXLSX)
	proposals.Get("/:id", controller.GetProposal)
	proposals.Delete("/:id", controller.DeleteProposal)
	proposals.Get("/:id/pdf", controller.DownloadPDF)
	proposals.Post("/:id/email", controller.EmailProposal)
}
