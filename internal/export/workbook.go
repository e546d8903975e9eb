// Package export writes catalog data as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/csvimport"
)

// ContentsSheet is the name of the exported sheet.
const ContentsSheet = "Contenus"

var contentsHeader = []interface{}{
	csvimport.ColNo,
	csvimport.ColTitre,
	csvimport.ColAuteur,
	csvimport.ColDescription,
}

// ContentsWorkbook writes contents as a single-sheet .xlsx. The header
// matches the import columns, so the file can be edited and imported back.
func ContentsWorkbook(w io.Writer, contents []api.Content) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ContentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := contentsHeader
	if err := f.SetSheetRow(ContentsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(ContentsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, c := range contents {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.No, c.Titre, c.Auteur, c.Description}
		if err := f.SetSheetRow(ContentsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(ContentsSheet, "A", "A", 8)
	_ = f.SetColWidth(ContentsSheet, "B", "C", 32)
	_ = f.SetColWidth(ContentsSheet, "D", "D", 60)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
