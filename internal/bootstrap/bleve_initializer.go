package bootstrap

import (
	"context"
	"fmt"

	bleveRepositories "solar-proposal-backend/bleve/repositories"
	"solar-proposal-backend/config"
	proposalRepositories "solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/proposals/services"

	"go.uber.org/zap"
)

// IndexBleveData rebuilds the search index from the database so a fresh or
// stale index directory matches the stored proposals.
func IndexBleveData(
	ctx context.Context,
	proposalRepo proposalRepositories.ProposalRepository,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) error {
	if err := bleveRepo.DeleteAllIndices(ctx); err != nil {
		return fmt.Errorf("error deleting all indices: %w", err)
	}

	proposals, err := proposalRepo.GetAllProposals()
	if err != nil {
		return fmt.Errorf("error fetching proposals for indexing: %w", err)
	}

	docs := make([]bleveRepositories.ProposalDocument, 0, len(proposals))
	for i := range proposals {
		docs = append(docs, services.ToSearchDocument(&proposals[i]))
	}
	if err := bleveRepo.IndexExistingProposals(docs); err != nil {
		return fmt.Errorf("failed to index proposals: %w", err)
	}

	config.Logger.Info("Search index rebuilt", zap.Int("proposals", len(docs)))
	return nil
}
