package models

import (
	"time"

	"solar-proposal-backend/utils/dates"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Default warranty labels printed when the form leaves them blank.
const (
	DefaultValidityDays              = 4
	DefaultWarrantyServices          = "Instalação – 1 ano"
	DefaultWarrantyModuleEquipment   = "Equipamento – 15 anos"
	DefaultWarrantyModulePerformance = "Performance – 25 anos"
	DefaultWarrantyInverter          = "Inversor – 10 anos"
)

// Proposal is a commercial proposal for one solar installation. It is
// created once and never updated.
type Proposal struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CustomerName string         `gorm:"not null;index" json:"customer_name"`
	CityState    *string        `json:"city_state"`
	ProposalDate dates.DateOnly `gorm:"type:date;not null;index" json:"proposal_date"`
	ValidityDays int            `gorm:"not null;default:4" json:"validity_days"`

	PowerKWp             float64  `gorm:"column:power_kwp;not null" json:"power_kwp"`
	MonthlyGenerationKWh float64  `gorm:"column:monthly_generation_kwh;not null" json:"monthly_generation_kwh"`
	UsableAreaM2         *float64 `gorm:"column:usable_area_m2" json:"usable_area_m2"`

	ModuleModel      string  `gorm:"not null" json:"module_model"`
	ModuleQuantity   int     `gorm:"not null" json:"module_quantity"`
	InverterModel    string  `gorm:"not null" json:"inverter_model"`
	InverterQuantity int     `gorm:"not null" json:"inverter_quantity"`
	OtherItems       *string `gorm:"type:text" json:"other_items"`

	WarrantyServices          string `gorm:"not null" json:"warranty_services"`
	WarrantyModuleEquipment   string `gorm:"not null" json:"warranty_module_equipment"`
	WarrantyModulePerformance string `gorm:"not null" json:"warranty_module_performance"`
	WarrantyInverter          string `gorm:"not null" json:"warranty_inverter"`

	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
