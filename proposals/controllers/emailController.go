package controllers

import (
	"errors"

	"solar-proposal-backend/config"
	"solar-proposal-backend/proposals/requests"
	"solar-proposal-backend/proposals/services"
	"solar-proposal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EmailProposal queues delivery of the PDF; the worker renders and sends it.
func (pc *ProposalController) EmailProposal(c *fiber.Ctx) error {
	proposal, err := pc.loadProposal(c)
	if proposal == nil {
		return err
	}

	var req requests.EmailProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request", "Invalid request format.")
	}
	if err := req.Validate(); err != nil {
		var verrs requests.ValidationErrors
		errors.As(err, &verrs)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"data":    nil,
			"error":   err.Error(),
			"details": verrs,
		})
	}

	variant, err := pc.Docs.ResolveVariant(req.Variant)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid variant", err.Error())
	}

	if pc.Queue == nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, "Email unavailable", "Email delivery is not configured.")
	}

	taskID, err := services.EnqueueEmail(c.UserContext(), pc.Queue, services.EmailPayload{
		ProposalID: proposal.ID.String(),
		To:         req.To,
		Variant:    variant,
	})
	if err != nil {
		config.Logger.Error("Failed to enqueue proposal email", zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}

	pc.publish(websocket.MessageTypeEmailQueued, proposal.ID.String(), fiber.Map{"task_id": taskID, "to": req.To})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Proposal email queued",
		"data":    fiber.Map{"task_id": taskID},
		"error":   nil,
	})
}
