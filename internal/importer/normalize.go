package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxImportRows caps a single import. Rows beyond the cap are not
// processed; callers surface a non-fatal truncation notice instead.
const MaxImportRows = 1000

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[1-9][0-9]{0,15}$`)

	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// DefaultSource is assigned when a file carries no source column.
const DefaultSource = "Import"

// Lead is a normalized, validated candidate record derived from one
// table row. It is not yet a Contact; identity stays with the store.
type Lead struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Website   string `json:"website,omitempty"`
	Source    string `json:"source,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// RowError records why a single row was rejected. Row numbers are
// 1-based and include the header row, so the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return e.Message
}

func rowErrorf(row int, format string, args ...any) *RowError {
	return &RowError{Row: row, Message: fmt.Sprintf("row %d: ", row) + fmt.Sprintf(format, args...)}
}

// NormalizeRow converts one raw row into a Lead, short-circuiting on
// the first validation failure. It returns exactly one of the lead or
// a row error.
func NormalizeRow(row []string, headers HeaderMap, rowNumber int) (Lead, *RowError) {
	var firstName, lastName string
	if headers.Has(RoleFirstName) && headers.Has(RoleLastName) {
		firstName = cellAt(row, headers.Column(RoleFirstName))
		lastName = cellAt(row, headers.Column(RoleLastName))
	} else {
		parts := strings.Fields(cellAt(row, headers.Column(RoleFullName)))
		if len(parts) > 0 {
			firstName = parts[0]
			lastName = strings.Join(parts[1:], " ")
		}
	}

	if firstName == "" && lastName == "" {
		return Lead{}, rowErrorf(rowNumber, "first or last name required")
	}

	email := cellAt(row, headers.Column(RoleEmail))
	if email == "" {
		return Lead{}, rowErrorf(rowNumber, "email required")
	}
	if !emailPattern.MatchString(email) {
		return Lead{}, rowErrorf(rowNumber, "invalid email (%s)", email)
	}

	phone := cellAt(row, headers.Column(RolePhone))
	if phone != "" && !validPhone(phone) {
		return Lead{}, rowErrorf(rowNumber, "invalid phone (%s)", phone)
	}

	source := cellAt(row, headers.Column(RoleSource))
	if !headers.Has(RoleSource) {
		source = DefaultSource
	}

	return Lead{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Company:   cellAt(row, headers.Column(RoleCompany)),
		Phone:     phone,
		Website:   cellAt(row, headers.Column(RoleWebsite)),
		Source:    source,
		Notes:     cellAt(row, headers.Column(RoleNotes)),
	}, nil
}

// NormalizeRows drives NormalizeRow over all data rows, collecting
// leads and row errors without ever aborting the batch. At most
// MaxImportRows rows are processed; the returned flag reports whether
// the input was truncated.
func NormalizeRows(rows [][]string, headers HeaderMap) ([]Lead, []RowError, bool) {
	truncated := len(rows) > MaxImportRows
	if truncated {
		rows = rows[:MaxImportRows]
	}

	var leads []Lead
	var rowErrs []RowError
	for idx, row := range rows {
		rowNumber := idx + 2 // 1-based, header row included
		lead, rowErr := NormalizeRow(row, headers, rowNumber)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		leads = append(leads, lead)
	}

	return leads, rowErrs, truncated
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(phoneStripper.Replace(phone))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
