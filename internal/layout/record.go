package layout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is everything the proposal template prints. Empty strings and a nil
// area mean the optional value is absent.
type Record struct {
	ID           string
	CustomerName string
	CityState    string
	ProposalDate time.Time
	ValidityDays int

	PowerKWp             float64
	MonthlyGenerationKWh float64
	UsableAreaM2         *float64

	ModuleModel      string
	ModuleQuantity   int
	InverterModel    string
	InverterQuantity int
	OtherItems       string

	WarrantyServices          string
	WarrantyModuleEquipment   string
	WarrantyModulePerformance string
	WarrantyInverter          string

	TotalPrice decimal.Decimal
}

func (r Record) ValidUntil() time.Time {
	return r.ProposalDate.AddDate(0, 0, r.ValidityDays)
}
