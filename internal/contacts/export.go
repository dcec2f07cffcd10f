package contacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mhartmann/leadcrm/internal/domain"
)

var exportHeader = []string{
	"First Name", "Last Name", "Email", "Company", "Phone",
	"Website", "Status", "Source", "Notes", "Created At",
}

func exportRow(c domain.Contact) []string {
	return []string{
		c.FirstName,
		c.LastName,
		c.Email,
		c.Company,
		c.Phone,
		c.Website,
		c.Status,
		c.Source,
		c.Notes,
		c.CreatedAt.Format(time.RFC3339),
	}
}

// WriteCSV streams the contact set as CSV.
func WriteCSV(w io.Writer, result []domain.Contact) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, contact := range result {
		if err := writer.Write(exportRow(contact)); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX streams the contact set as a single-sheet workbook.
func WriteXLSX(w io.Writer, result []domain.Contact) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Contacts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := writeStreamRow(stream, 1, exportHeader); err != nil {
		return err
	}
	for i, contact := range result {
		if err := writeStreamRow(stream, i+2, exportRow(contact)); err != nil {
			return err
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeStreamRow(stream *excelize.StreamWriter, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	row := make([]any, len(values))
	for i, value := range values {
		row[i] = value
	}
	if err := stream.SetRow(cell, row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNumber, err)
	}
	return nil
}
