package controllers

import (
	"strings"

	bleveModels "solar-proposal-backend/bleve/models"
	"solar-proposal-backend/bleve/repositories"
	"solar-proposal-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchController struct {
	repo repositories.BleveRepositoryInterface
}

func NewSearchController(repo repositories.BleveRepositoryInterface) *SearchController {
	return &SearchController{repo: repo}
}

// SearchProposalsController searches customer, city and equipment fields.
// ?fields=customer_name,city_state narrows the fields searched.
func (c *SearchController) SearchProposalsController(ctx *fiber.Ctx) error {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid search",
			"data":    nil,
			"error":   "query parameter 'q' is required",
		})
	}

	var fields []string
	if raw := ctx.Query("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}

	results, err := c.repo.SearchProposals(q, fields, ctx.QueryInt("limit", 20))
	if err != nil {
		config.Logger.Error("Proposal search failed", zap.String("query", q), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Search failed",
			"data":    nil,
			"error":   "An internal server error occurred.",
		})
	}

	response := bleveModels.SearchResponse{Hits: []bleveModels.SearchHit{}, Total: results.Total}
	for _, hit := range results.Hits {
		response.Hits = append(response.Hits, bleveModels.SearchHit{
			ID:     hit.ID,
			Score:  hit.Score,
			Fields: hit.Fields,
		})
	}

	return ctx.JSON(fiber.Map{
		"message": "Search completed",
		"data":    response,
		"error":   nil,
	})
}
