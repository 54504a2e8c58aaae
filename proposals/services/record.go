package services

import (
	"solar-proposal-backend/bleve/repositories"
	"solar-proposal-backend/db/models"
	"solar-proposal-backend/internal/layout"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToRecord projects a stored proposal onto what the template prints.
func ToRecord(p *models.Proposal) layout.Record {
	return layout.Record{
		ID:                        p.ID.String(),
		CustomerName:              p.CustomerName,
		CityState:                 deref(p.CityState),
		ProposalDate:              p.ProposalDate.Time(),
		ValidityDays:              p.ValidityDays,
		PowerKWp:                  p.PowerKWp,
		MonthlyGenerationKWh:      p.MonthlyGenerationKWh,
		UsableAreaM2:              p.UsableAreaM2,
		ModuleModel:               p.ModuleModel,
		ModuleQuantity:            p.ModuleQuantity,
		InverterModel:             p.InverterModel,
		InverterQuantity:          p.InverterQuantity,
		OtherItems:                deref(p.OtherItems),
		WarrantyServices:          p.WarrantyServices,
		WarrantyModuleEquipment:   p.WarrantyModuleEquipment,
		WarrantyModulePerformance: p.WarrantyModulePerformance,
		WarrantyInverter:          p.WarrantyInverter,
		TotalPrice:                p.TotalPrice,
	}
}

// ToSearchDocument is the bleve projection of a proposal.
func ToSearchDocument(p *models.Proposal) repositories.ProposalDocument {
	return repositories.ProposalDocument{
		ID:            p.ID.String(),
		CustomerName:  p.CustomerName,
		CityState:     deref(p.CityState),
		ModuleModel:   p.ModuleModel,
		InverterModel: p.InverterModel,
		ProposalDate:  p.ProposalDate.String(),
		TotalPrice:    p.TotalPrice.StringFixed(2),
	}
}
