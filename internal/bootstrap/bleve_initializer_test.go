package bootstrap

import (
	"context"
	"testing"

	bleveRepositories "solar-proposal-backend/bleve/repositories"
	bleveServices "solar-proposal-backend/bleve/services"
	"solar-proposal-backend/db/models"
	proposalRepositories "solar-proposal-backend/proposals/repositories"
	"solar-proposal-backend/utils/dates"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIndexBleveDataRebuildsIndex(t *testing.T) {
	indexer := bleveServices.NewIndexingService(zap.NewNop(), t.TempDir())
	t.Cleanup(func() { indexer.Close() })
	_, search := bleveRepositories.NewBleveRepository(indexer)

	require.NoError(t, search.IndexSingleProposal(bleveRepositories.ProposalDocument{ID: "stale", CustomerName: "Cliente Removido"}))

	repo := proposalRepositories.NewMemoryProposalRepository()
	date, err := dates.ParseDateOnly("2025-12-15")
	require.NoError(t, err)
	created, err := repo.CreateProposal(&models.Proposal{
		CustomerName: "João Silva Santos",
		ProposalDate: date,
		TotalPrice:   decimal.RequireFromString("11537.92"),
	})
	require.NoError(t, err)

	require.NoError(t, IndexBleveData(context.Background(), repo, search))

	res, err := search.SearchProposals("removido", nil, 10)
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	doc, err := search.GetProposalDocument(created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "11537.92", doc["total_price"])
	assert.Equal(t, "2025-12-15", doc["proposal_date"])
}
