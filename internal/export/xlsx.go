package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// SheetName is the worksheet holding exported field sets.
const SheetName = "Policy"

// WriteXLSX writes a workbook with a single sheet holding the header and one
// row per field set.
func WriteXLSX(w io.Writer, sets ...domain.FieldSet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Rename the default sheet rather than adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellStr(SheetName, cell, v)
	}

	for i, h := range Columns() {
		if err := write(i+1, 1, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for r := range sets {
		for i, v := range sets[r].Values() {
			if err := write(i+1, r+2, v); err != nil {
				return fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	last, err := excelize.ColumnNumberToName(len(domain.FieldKeys))
	if err != nil {
		return err
	}
	_ = f.SetColWidth(SheetName, "A", last, 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, format domain.ExportFormat, sets ...domain.FieldSet) error {
	switch format {
	case domain.ExportCSV:
		return WriteCSV(w, sets...)
	case domain.ExportXLSX:
		return WriteXLSX(w, sets...)
	default:
		return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

// ContentType returns the MIME type for format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
