package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

const exportSheet = "Inventory"

var exportHeader = []string{"SKU", "Name", "Quantity", "Min Stock", "Low Stock", "Last Updated"}

// WriteCSV writes items as CSV with a header row.
func WriteCSV(w io.Writer, items []models.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, it := range items {
		err := cw.Write([]string{
			it.SKU,
			it.Name,
			strconv.Itoa(it.Quantity),
			strconv.Itoa(it.MinStock),
			yesNo(it.LowStock()),
			it.LastUpdated.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes items as a single-sheet workbook.
func WriteXLSX(w io.Writer, items []models.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "F1", bold); err != nil {
		return err
	}

	for idx, it := range items {
		row := []any{
			it.SKU,
			it.Name,
			it.Quantity,
			it.MinStock,
			yesNo(it.LowStock()),
			it.LastUpdated.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", idx+2), &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 16)
	_ = f.SetColWidth(exportSheet, "B", "B", 30)
	_ = f.SetColWidth(exportSheet, "C", "E", 12)
	_ = f.SetColWidth(exportSheet, "F", "F", 20)

	return f.Write(w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
