package repositories

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const proposalsIndex = "proposals"

// ProposalSearchFields are searched when the caller names none.
var ProposalSearchFields = []string{"customer_name", "city_state", "module_model", "inverter_model"}

// ProposalDocument is the searchable projection of a proposal.
type ProposalDocument struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	CityState     string `json:"city_state"`
	ModuleModel   string `json:"module_model"`
	InverterModel string `json:"inverter_model"`
	ProposalDate  string `json:"proposal_date"`
	TotalPrice    string `json:"total_price"`
}

// proposalMapping analyzes the searchable text fields and keeps the date and
// price as stored keywords so they come back exactly as indexed.
func proposalMapping() mapping.IndexMapping {
	text := mapping.NewTextFieldMapping()
	text.Analyzer = standard.Name

	keyword := mapping.NewKeywordFieldMapping()

	storedOnly := mapping.NewTextFieldMapping()
	storedOnly.Index = false
	storedOnly.IncludeInAll = false

	doc := mapping.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt("id", keyword)
	for _, field := range ProposalSearchFields {
		doc.AddFieldMappingsAt(field, text)
	}
	doc.AddFieldMappingsAt("proposal_date", keyword)
	doc.AddFieldMappingsAt("total_price", storedOnly)

	im := mapping.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}

func (r *BleveRepository) IndexSingleProposal(doc ProposalDocument) error {
	if err := r.indexer.IndexDocument(proposalsIndex, doc.ID, doc); err != nil {
		return fmt.Errorf("index proposal %s: %w", doc.ID, err)
	}
	return nil
}

func (r *BleveRepository) IndexExistingProposals(docs []ProposalDocument) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make(map[string]interface{}, len(docs))
	for _, doc := range docs {
		batch[doc.ID] = doc
	}
	return r.indexer.BulkIndexDocuments(proposalsIndex, batch)
}

func (r *BleveRepository) DeleteProposal(proposalID string) error {
	return r.indexer.DeleteDocument(proposalsIndex, proposalID)
}

func (r *BleveRepository) SearchProposals(term string, fields []string, limit int) (*bleve.SearchResult, error) {
	if len(fields) == 0 {
		fields = ProposalSearchFields
	}
	if limit <= 0 {
		limit = 20
	}
	return r.indexer.SearchIndex(proposalsIndex, fuzzyQuery(term, fields), limit)
}

// wildcardMeta are the characters a wildcard query would interpret.
var wildcardMeta = strings.NewReplacer("*", "", "?", "")

// SearchProposalsByName matches customer names containing every word of term
// inside one of their tokens, case-insensitively. It mirrors a substring
// filter on the name without requiring the words to be adjacent.
func (r *BleveRepository) SearchProposalsByName(term string, limit int) (*bleve.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var q query.Query = bleve.NewMatchNoneQuery()
	words := strings.Fields(strings.ToLower(wildcardMeta.Replace(term)))
	if len(words) > 0 {
		conj := bleve.NewConjunctionQuery()
		for _, word := range words {
			infix := bleve.NewWildcardQuery("*" + word + "*")
			infix.SetField("customer_name")
			conj.AddQuery(infix)
		}
		q = conj
	}
	return r.indexer.SearchIndex(proposalsIndex, q, limit)
}

func (r *BleveRepository) GetProposalDocument(id string) (map[string]interface{}, error) {
	return r.indexer.GetDocument(proposalsIndex, id)
}
