package requests

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"solar-proposal-backend/db/models"
	"solar-proposal-backend/utils/dates"

	"github.com/shopspring/decimal"
)

const maxTextLength = 200

// ValidationErrors maps a JSON field name to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CreateProposalRequest is the body of POST /proposals.
type CreateProposalRequest struct {
	CustomerName string  `json:"customer_name"`
	CityState    *string `json:"city_state"`
	ProposalDate string  `json:"proposal_date"`
	ValidityDays *int    `json:"validity_days"`

	PowerKWp             float64  `json:"power_kwp"`
	MonthlyGenerationKWh float64  `json:"monthly_generation_kwh"`
	UsableAreaM2         *float64 `json:"usable_area_m2"`

	ModuleModel      string  `json:"module_model"`
	ModuleQuantity   int     `json:"module_quantity"`
	InverterModel    string  `json:"inverter_model"`
	InverterQuantity int     `json:"inverter_quantity"`
	OtherItems       *string `json:"other_items"`

	WarrantyServices          string `json:"warranty_services"`
	WarrantyModuleEquipment   string `json:"warranty_module_equipment"`
	WarrantyModulePerformance string `json:"warranty_module_performance"`
	WarrantyInverter          string `json:"warranty_inverter"`

	TotalPrice decimal.Decimal `json:"total_price"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}

// Normalize trims text, drops blank optional values and fills defaults.
func (r *CreateProposalRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CityState = trimOptional(r.CityState)
	r.ProposalDate = strings.TrimSpace(r.ProposalDate)
	r.ModuleModel = strings.TrimSpace(r.ModuleModel)
	r.InverterModel = strings.TrimSpace(r.InverterModel)
	r.OtherItems = trimOptional(r.OtherItems)

	if r.ValidityDays == nil || *r.ValidityDays == 0 {
		days := models.DefaultValidityDays
		r.ValidityDays = &days
	}

	r.WarrantyServices = orDefault(r.WarrantyServices, models.DefaultWarrantyServices)
	r.WarrantyModuleEquipment = orDefault(r.WarrantyModuleEquipment, models.DefaultWarrantyModuleEquipment)
	r.WarrantyModulePerformance = orDefault(r.WarrantyModulePerformance, models.DefaultWarrantyModulePerformance)
	r.WarrantyInverter = orDefault(r.WarrantyInverter, models.DefaultWarrantyInverter)
}

// Validate expects a normalized request.
func (r *CreateProposalRequest) Validate() error {
	errs := ValidationErrors{}

	required := func(field, value string) {
		switch {
		case value == "":
			errs[field] = "is required"
		case utf8.RuneCountInString(value) > maxTextLength:
			errs[field] = fmt.Sprintf("must be at most %d characters", maxTextLength)
		}
	}
	required("customer_name", r.CustomerName)
	required("module_model", r.ModuleModel)
	required("inverter_model", r.InverterModel)

	if r.CityState != nil && utf8.RuneCountInString(*r.CityState) > maxTextLength {
		errs["city_state"] = fmt.Sprintf("must be at most %d characters", maxTextLength)
	}

	if r.ProposalDate == "" {
		errs["proposal_date"] = "is required"
	} else if _, err := dates.ParseDateOnly(r.ProposalDate); err != nil {
		errs["proposal_date"] = "must be a date in YYYY-MM-DD format"
	}

	if r.ValidityDays != nil && *r.ValidityDays < 1 {
		errs["validity_days"] = "must be a positive number of days"
	}
	if r.PowerKWp <= 0 {
		errs["power_kwp"] = "must be greater than zero"
	}
	if r.MonthlyGenerationKWh <= 0 {
		errs["monthly_generation_kwh"] = "must be greater than zero"
	}
	if r.UsableAreaM2 != nil && *r.UsableAreaM2 <= 0 {
		errs["usable_area_m2"] = "must be greater than zero when provided"
	}
	if r.ModuleQuantity < 1 {
		errs["module_quantity"] = "must be at least 1"
	}
	if r.InverterQuantity < 1 {
		errs["inverter_quantity"] = "must be at least 1"
	}
	if !r.TotalPrice.IsPositive() {
		errs["total_price"] = "must be greater than zero"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToModel builds the record to persist. The request must be valid.
func (r *CreateProposalRequest) ToModel(createdBy string) (*models.Proposal, error) {
	date, err := dates.ParseDateOnly(r.ProposalDate)
	if err != nil {
		return nil, err
	}
	validity := models.DefaultValidityDays
	if r.ValidityDays != nil {
		validity = *r.ValidityDays
	}

	return &models.Proposal{
		CustomerName:              r.CustomerName,
		CityState:                 r.CityState,
		ProposalDate:              date,
		ValidityDays:              validity,
		PowerKWp:                  r.PowerKWp,
		MonthlyGenerationKWh:      r.MonthlyGenerationKWh,
		UsableAreaM2:              r.UsableAreaM2,
		ModuleModel:               r.ModuleModel,
		ModuleQuantity:            r.ModuleQuantity,
		InverterModel:             r.InverterModel,
		InverterQuantity:          r.InverterQuantity,
		OtherItems:                r.OtherItems,
		WarrantyServices:          r.WarrantyServices,
		WarrantyModuleEquipment:   r.WarrantyModuleEquipment,
		WarrantyModulePerformance: r.WarrantyModulePerformance,
		WarrantyInverter:          r.WarrantyInverter,
		TotalPrice:                r.TotalPrice.Round(2),
		CreatedBy:                 createdBy,
	}, nil
}

// EmailProposalRequest is the body of POST /proposals/:id/email.
type EmailProposalRequest struct {
	To      string `json:"to"`
	Variant string `json:"variant"`
}

func (r *EmailProposalRequest) Validate() error {
	addr, err := mail.ParseAddress(strings.TrimSpace(r.To))
	if err != nil {
		return ValidationErrors{"to": "must be a valid email address"}
	}
	r.To = addr.Address
	r.Variant = strings.TrimSpace(r.Variant)
	return nil
}
