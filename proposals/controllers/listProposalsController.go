package controllers

import (
	"strings"

	"solar-proposal-backend/config"
	"solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// searchLimit caps how many index hits feed one filtered listing.
const searchLimit = 1000

// searchIDs resolves a customer name search through the index. ok is false
// when no index is available or it failed, and the caller falls back to a
// substring match.
func (pc *ProposalController) searchIDs(term string) (ids []uuid.UUID, ok bool) {
	if pc.Search == nil {
		return nil, false
	}
	results, err := pc.Search.SearchProposalsByName(term, searchLimit)
	if err != nil {
		config.Logger.Warn("Index search failed, falling back to database filter", zap.String("search", term), zap.Error(err))
		return nil, false
	}
	ids = make([]uuid.UUID, 0, len(results.Hits))
	for _, hit := range results.Hits {
		if id, err := uuid.Parse(hit.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, true
}

// ListProposals returns newest proposals first. ?search= filters by customer
// name.
func (pc *ProposalController) ListProposals(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", err.Error())
	}

	filter := repositories.ListFilter{Limit: params.PageSize, Offset: params.Offset()}
	if search := strings.TrimSpace(params.Filters["search"]); search != "" {
		if ids, ok := pc.searchIDs(search); ok {
			filter.IDs = ids
		} else {
			filter.CustomerName = search
		}
	}

	proposals, total, err := pc.Repo.ListProposals(filter)
	if err != nil {
		config.Logger.Error("Failed to list proposals", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Something went wrong", "An internal server error occurred.")
	}

	return c.JSON(fiber.Map{
		"message": "Proposals retrieved successfully",
		"data":    pagination.NewPaginatedResponse(c, proposals, total, params),
		"error":   nil,
	})
}
