package controllers

import (
	"errors"

	bleveRepositories "solar-proposal-backend/bleve/repositories"
	"solar-proposal-backend/config"
	"solar-proposal-backend/db/models"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/middleware"
	"solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/proposals/requests"
	"solar-proposal-backend/proposals/services"
	"solar-proposal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by *websocket.Hub.
type EventPublisher interface {
	Publish(kind websocket.MessageType, proposalID string, payload interface{})
}

type ProposalController struct {
	Repo   repositories.ProposalRepository
	Docs   *services.DocumentService
	Search bleveRepositories.BleveRepositoryInterface
	Events EventPublisher
	Queue  services.Enqueuer
}

func (pc *ProposalController) publish(kind websocket.MessageType, id string, payload interface{}) {
	if pc.Events != nil {
		pc.Events.Publish(kind, id, payload)
	}
}

func errorResponse(c *fiber.Ctx, status int, message, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    nil,
		"error":   detail,
	})
}

func invalidProposalID(c *fiber.Ctx) error {
	return errorResponse(c, fiber.StatusBadRequest, "Invalid request", "Invalid proposal ID format")
}

// loadProposal writes the 400/404/500 response itself; callers return the
// error unchanged when the proposal is nil.
func (pc *ProposalController) loadProposal(c *fiber.Ctx) (*models.Proposal, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, invalidProposalID(c)
	}
	proposal, err := pc.Repo.GetProposalByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return nil, errorResponse(c, fiber.StatusNotFound, "Proposal not found", "Proposal does not exist.")
		}
		config.Logger.Error("Failed to load proposal", zap.String("proposal_id", id.String()), zap.Error(err))
		return nil, errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}
	return proposal, nil
}

func (pc *ProposalController) CreateProposal(c *fiber.Ctx) error {
	var req requests.CreateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Warn("Error parsing proposal request body", zap.Error(err))
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request", "Invalid request format.")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		var verrs requests.ValidationErrors
		if errors.As(err, &verrs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"data":    nil,
				"error":   verrs.Error(),
				"details": verrs,
			})
		}
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}

	createdBy := "system"
	if user := middleware.CurrentUser(c); user != nil {
		createdBy = user.Username
	}

	proposal, err := req.ToModel(createdBy)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}

	created, err := pc.Repo.CreateProposal(proposal)
	if err != nil {
		config.Logger.Error("Failed to create proposal", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}

	if pc.Search != nil {
		if err := pc.Search.IndexSingleProposal(services.ToSearchDocument(created)); err != nil {
			config.Logger.Warn("Failed to index proposal", zap.String("proposal_id", created.ID.String()), zap.Error(err))
		}
	}
	metrics.IncProposal("create")
	pc.publish(websocket.MessageTypeProposalCreated, created.ID.String(), created)

	config.Logger.Info("Proposal created",
		zap.String("proposal_id", created.ID.String()),
		zap.String("customer", created.CustomerName),
		zap.String("created_by", createdBy),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Proposal created successfully",
		"data":    created,
		"error":   nil,
	})
}

func (pc *ProposalController) GetProposal(c *fiber.Ctx) error {
	proposal, err := pc.loadProposal(c)
	if proposal == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Proposal retrieved successfully",
		"data":    proposal,
		"error":   nil,
	})
}

func (pc *ProposalController) DeleteProposal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidProposalID(c)
	}

	if err := pc.Repo.DeleteProposal(id); err != nil {
		if errors.Is(err, repositories.ErrProposalNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Proposal not found", "Proposal does not exist.")
		}
		config.Logger.Error("Failed to delete proposal", zap.String("proposal_id", id.String()), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}

	if pc.Search != nil {
		if err := pc.Search.DeleteProposal(id.String()); err != nil {
			config.Logger.Warn("Failed to remove proposal from index", zap.String("proposal_id", id.String()), zap.Error(err))
		}
	}
	if err := pc.Docs.Invalidate(c.UserContext(), id.String()); err != nil {
		config.Logger.Warn("Failed to invalidate render cache", zap.String("proposal_id", id.String()), zap.Error(err))
	}
	metrics.IncProposal("delete")
	pc.publish(websocket.MessageTypeProposalDeleted, id.String(), fiber.Map{"id": id.String()})

	config.Logger.Info("Proposal deleted", zap.String("proposal_id", id.String()))
	return c.SendStatus(fiber.StatusNoContent)
}
