package repositories

import (
	"errors"
	"fmt"
	"strings"

	"solar-proposal-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProposalNotFound = errors.New("proposal not found")

// ListFilter narrows a listing. A non-nil IDs restricts the result to those
// ids, so an empty non-nil slice matches nothing.
type ListFilter struct {
	CustomerName string
	IDs          []uuid.UUID
	Limit        int
	Offset       int
}

type ProposalRepository interface {
	CreateProposal(proposal *models.Proposal) (*models.Proposal, error)
	GetProposalByID(id uuid.UUID) (*models.Proposal, error)
	// ListProposals orders by proposal date, newest first, then creation time.
	ListProposals(filter ListFilter) ([]models.Proposal, int64, error)
	GetAllProposals() ([]models.Proposal, error)
	DeleteProposal(id uuid.UUID) error
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) CreateProposal(proposal *models.Proposal) (*models.Proposal, error) {
	if err := r.db.Create(proposal).Error; err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

func (r *proposalRepository) GetProposalByID(id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.Where("id = ?", id).First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &proposal, nil
}

func (r *proposalRepository) filtered(filter ListFilter) *gorm.DB {
	query := r.db.Model(&models.Proposal{})
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	return query
}

func (r *proposalRepository) ListProposals(filter ListFilter) ([]models.Proposal, int64, error) {
	proposals := []models.Proposal{}
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return proposals, 0, nil
	}

	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	query := r.filtered(filter).Order("proposal_date DESC").Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&proposals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, total, nil
}

func (r *proposalRepository) GetAllProposals() ([]models.Proposal, error) {
	proposals, _, err := r.ListProposals(ListFilter{})
	return proposals, err
}

func (r *proposalRepository) DeleteProposal(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Proposal{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete proposal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProposalNotFound
	}
	return nil
}
