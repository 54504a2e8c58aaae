package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"solar-proposal-backend/db/models"

	"github.com/google/uuid"
)

// memoryProposalRepository keeps proposals in process memory. It backs the
// offline tools and tests.
type memoryProposalRepository struct {
	mu        sync.RWMutex
	proposals map[uuid.UUID]models.Proposal
	now       func() time.Time
}

func NewMemoryProposalRepository() ProposalRepository {
	return &memoryProposalRepository{
		proposals: make(map[uuid.UUID]models.Proposal),
		now:       time.Now,
	}
}

func (r *memoryProposalRepository) CreateProposal(proposal *models.Proposal) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	now := r.now()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	r.proposals[proposal.ID] = *proposal
	return proposal, nil
}

func (r *memoryProposalRepository) GetProposalByID(id uuid.UUID) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	proposal, ok := r.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return &proposal, nil
}

func (r *memoryProposalRepository) ListProposals(filter ListFilter) ([]models.Proposal, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var allowed map[uuid.UUID]bool
	if filter.IDs != nil {
		allowed = make(map[uuid.UUID]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			allowed[id] = true
		}
	}
	name := strings.ToLower(strings.TrimSpace(filter.CustomerName))

	matched := []models.Proposal{}
	for _, p := range r.proposals {
		if allowed != nil && !allowed[p.ID] {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.CustomerName), name) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		di, dj := matched[i].ProposalDate.Time(), matched[j].ProposalDate.Time()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *memoryProposalRepository) GetAllProposals() ([]models.Proposal, error) {
	proposals, _, err := r.ListProposals(ListFilter{})
	return proposals, err
}

func (r *memoryProposalRepository) DeleteProposal(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[id]; !ok {
		return ErrProposalNotFound
	}
	delete(r.proposals, id)
	return nil
}
