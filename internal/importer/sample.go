package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sampleRows is the example table offered for download so users can
// see the expected column layout. Header and content match the import
// keyword groups.
var sampleRows = [][]string{
	{"Vorname", "Nachname", "Email", "Unternehmen", "Telefon", "Website", "Quelle", "Notizen"},
	{"Max", "Mustermann", "max.mustermann@example.com", "Mustermann GmbH", "+49 123 456789", "https://mustermann-gmbh.de", "Website", "Interessiert an Premium-Paket"},
	{"Anna", "Schmidt", "anna.schmidt@techfirma.de", "TechFirma AG", "+49 987 654321", "https://techfirma.de", "Messe", "Lead von der CeBIT 2024"},
	{"Peter", "Weber", "p.weber@startup.com", "StartUp Innovation", "+49 555 123456", "https://startup-innovation.com", "LinkedIn", "Kontakt über LinkedIn-Kampagne"},
	{"Sarah", "Johnson", "sarah@globalcorp.com", "Global Corp", "+1 555 789012", "https://globalcorp.com", "Empfehlung", "Empfehlung von bestehenden Kunden"},
	{"Klaus", "Meyer", "klaus.meyer@consulting.de", "Meyer Consulting", "+49 444 987654", "https://meyer-consulting.de", "Google Ads", "Interesse an Beratungsleistungen"},
}

// WriteSampleCSV writes the example table as CSV.
func WriteSampleCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	for _, row := range sampleRows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write sample csv: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSampleXLSX writes the example table as a single-sheet workbook.
func WriteSampleXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Leads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for rowIdx, row := range sampleRows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write sample xlsx: %w", err)
	}
	return nil
}
