package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

type IndexingServiceInterface interface {
	RegisterMapping(indexName string, m mapping.IndexMapping)
	IndexDocument(indexName, id string, document interface{}) error
	BulkIndexDocuments(indexName string, documents map[string]interface{}) error
	DeleteDocument(indexName, id string) error
	SearchIndex(indexName string, q query.Query, size int) (*bleve.SearchResult, error)
	GetDocument(indexName, id string) (map[string]interface{}, error)
	DeleteIndex(indexName string) error
	DeleteAllIndices() error
	Close() error
}

// IndexingService keeps one bleve index per name, opened on first use. With
// an empty basePath the indexes live in memory only.
type IndexingService struct {
	mu       sync.Mutex
	indexes  map[string]bleve.Index
	mappings map[string]mapping.IndexMapping
	logger   *zap.Logger
	basePath string
}

func NewIndexingService(logger *zap.Logger, basePath string) *IndexingService {
	return &IndexingService{
		indexes:  make(map[string]bleve.Index),
		mappings: make(map[string]mapping.IndexMapping),
		logger:   logger,
		basePath: basePath,
	}
}

// NewMemIndexingService is backed by memory-only indexes.
func NewMemIndexingService(logger *zap.Logger) *IndexingService {
	return NewIndexingService(logger, "")
}

// RegisterMapping sets the mapping used when indexName is created. Indexes
// already on disk keep the mapping they were built with.
func (s *IndexingService) RegisterMapping(indexName string, m mapping.IndexMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[indexName] = m
}

func (s *IndexingService) indexPath(indexName string) string {
	return filepath.Join(s.basePath, indexName+".bleve")
}

func (s *IndexingService) open(indexName string) (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.indexes[indexName]; ok {
		return idx, nil
	}

	m, ok := s.mappings[indexName]
	if !ok {
		m = bleve.NewIndexMapping()
	}

	var (
		idx bleve.Index
		err error
	)
	if s.basePath == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		if err := os.MkdirAll(s.basePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		path := s.indexPath(indexName)
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		s.logger.Error("Could not open index", zap.String("index", indexName), zap.Error(err))
		return nil, fmt.Errorf("open index %s: %w", indexName, err)
	}

	s.indexes[indexName] = idx
	return idx, nil
}

// SearchIndex returns hits with all stored fields.
func (s *IndexingService) SearchIndex(indexName string, q query.Query, size int) (*bleve.SearchResult, error) {
	idx, err := s.open(indexName)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = []string{"*"}

	res, err := idx.Search(req)
	if err != nil {
		s.logger.Error("Search failed", zap.String("index", indexName), zap.Error(err))
		return nil, fmt.Errorf("search %s: %w", indexName, err)
	}
	return res, nil
}

func (s *IndexingService) IndexDocument(indexName, id string, document interface{}) error {
	idx, err := s.open(indexName)
	if err != nil {
		return err
	}
	if err := idx.Index(id, document); err != nil {
		s.logger.Error("Failed to index document", zap.String("index", indexName), zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Debug("Indexed document", zap.String("index", indexName), zap.String("id", id))
	return nil
}

func (s *IndexingService) BulkIndexDocuments(indexName string, documents map[string]interface{}) error {
	idx, err := s.open(indexName)
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for id, doc := range documents {
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("batch document %s: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		s.logger.Error("Failed to execute batch", zap.String("index", indexName), zap.Error(err))
		return err
	}

	s.logger.Info("Bulk indexed documents", zap.String("index", indexName), zap.Int("count", len(documents)))
	return nil
}

func (s *IndexingService) DeleteDocument(indexName, id string) error {
	idx, err := s.open(indexName)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		s.logger.Error("Failed to delete document", zap.String("index", indexName), zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// GetDocument returns the stored fields of one document.
func (s *IndexingService) GetDocument(indexName, id string) (map[string]interface{}, error) {
	res, err := s.SearchIndex(indexName, bleve.NewDocIDQuery([]string{id}), 1)
	if err != nil {
		return nil, err
	}
	if len(res.Hits) == 0 {
		return nil, fmt.Errorf("document %s not found in %s", id, indexName)
	}
	return res.Hits[0].Fields, nil
}

// DeleteIndex closes an open index and removes its files.
func (s *IndexingService) DeleteIndex(indexName string) error {
	s.mu.Lock()
	idx, open := s.indexes[indexName]
	delete(s.indexes, indexName)
	s.mu.Unlock()

	if !open {
		return fmt.Errorf("index %s is not open", indexName)
	}
	if err := idx.Close(); err != nil {
		return fmt.Errorf("failed to close index %s: %w", indexName, err)
	}
	if s.basePath == "" {
		return nil
	}
	if err := os.RemoveAll(s.indexPath(indexName)); err != nil {
		return fmt.Errorf("failed to delete index files: %w", err)
	}
	s.logger.Info("Deleted index", zap.String("index", indexName))
	return nil
}

// DeleteAllIndices drops the open indexes and any index directory left on
// disk by a previous run.
func (s *IndexingService) DeleteAllIndices() error {
	s.mu.Lock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	s.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := s.DeleteIndex(name); err != nil {
			errs = append(errs, err)
		}
	}

	if s.basePath != "" {
		leftovers, err := filepath.Glob(filepath.Join(s.basePath, "*.bleve"))
		if err != nil {
			return fmt.Errorf("failed to scan index directory: %w", err)
		}
		for _, dir := range leftovers {
			if err := os.RemoveAll(dir); err != nil {
				errs = append(errs, err)
				continue
			}
			s.logger.Info("Deleted orphaned index", zap.String("index", strings.TrimSuffix(filepath.Base(dir), ".bleve")))
		}
	}

	return errors.Join(errs...)
}

// Close releases every open index.
func (s *IndexingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index %s: %w", name, err))
		}
		delete(s.indexes, name)
	}
	return errors.Join(errs...)
}
