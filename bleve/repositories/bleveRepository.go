package repositories

import (
	"context"
	"strings"

	bleveindex "solar-proposal-backend/bleve/services"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

type BleveRepository struct {
	indexer bleveindex.IndexingServiceInterface
}

type BleveRepositoryInterface interface {
	// General
	DeleteAllIndices(ctx context.Context) error

	// ==== Proposal Indexing ====
	IndexSingleProposal(doc ProposalDocument) error
	IndexExistingProposals(docs []ProposalDocument) error
	DeleteProposal(proposalID string) error
	SearchProposals(term string, fields []string, limit int) (*bleve.SearchResult, error)
	SearchProposalsByName(term string, limit int) (*bleve.SearchResult, error)
	GetProposalDocument(id string) (map[string]interface{}, error)
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer bleveindex.IndexingServiceInterface) (*BleveRepository, BleveRepositoryInterface) {
	indexer.RegisterMapping(proposalsIndex, proposalMapping())
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}

func (r *BleveRepository) DeleteAllIndices(ctx context.Context) error {
	return r.indexer.DeleteAllIndices()
}

// fuzzyQuery combines exact, prefix and typo tolerant matches of term over
// fields. A document must satisfy at least one of them.
func fuzzyQuery(term string, fields []string) query.Query {
	term = strings.TrimSpace(term)
	tokens := strings.Fields(strings.ToLower(term))
	booleanQuery := bleve.NewBooleanQuery()

	for _, field := range fields {
		// every word of the term must appear
		match := bleve.NewMatchQuery(term)
		match.SetField(field)
		match.SetOperator(query.MatchQueryOperatorAnd)
		match.SetBoost(3.0)
		booleanQuery.AddShould(match)

		if len(tokens) == 1 {
			prefix := bleve.NewPrefixQuery(tokens[0])
			prefix.SetField(field)
			prefix.SetBoost(2.0)
			booleanQuery.AddShould(prefix)

			fuzzy := bleve.NewFuzzyQuery(tokens[0])
			fuzzy.SetField(field)
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(1.0)
			booleanQuery.AddShould(fuzzy)
		}
	}

	booleanQuery.SetMinShould(1)
	return booleanQuery
}
