package services

import (
	"fmt"
	"io"

	"solar-proposal-backend/db/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Propostas"

var exportHeaders = []string{
	"ID", "Cliente", "Cidade/UF", "Data da Proposta", "Validade (dias)",
	"Potência (kWp)", "Geração Mensal (kWh)", "Área Útil (m²)",
	"Módulo", "Qtd. Módulos", "Inversor", "Qtd. Inversores", "Outros Itens",
	"Valor Total (R$)", "Criado Por", "Criado Em",
}

func exportRow(p models.Proposal) []interface{} {
	var area interface{}
	if p.UsableAreaM2 != nil {
		area = *p.UsableAreaM2
	}
	return []interface{}{
		p.ID.String(),
		p.CustomerName,
		deref(p.CityState),
		p.ProposalDate.String(),
		p.ValidityDays,
		p.PowerKWp,
		p.MonthlyGenerationKWh,
		area,
		p.ModuleModel,
		p.ModuleQuantity,
		p.InverterModel,
		p.InverterQuantity,
		deref(p.OtherItems),
		p.TotalPrice.InexactFloat64(),
		p.CreatedBy,
		p.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// WriteProposalsXLSX writes one row per proposal, in the given order, below a
// bold header row.
func WriteProposalsXLSX(w io.Writer, proposals []models.Proposal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("error setting headers: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("error styling headers: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("error sizing columns: %w", err)
	}

	for i, p := range proposals {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(p)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
