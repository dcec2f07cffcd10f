package importer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHeaders(t *testing.T, row []string) HeaderMap {
	t.Helper()
	headers, err := DetectHeaders(row)
	require.NoError(t, err)
	return headers
}

func TestNormalizeRowSeparateNameColumns(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email", "Unternehmen"})

	lead, rowErr := NormalizeRow([]string{" Max ", "Mustermann", "max@ex.com", "ExCo"}, headers, 2)
	require.Nil(t, rowErr)
	require.Equal(t, "Max", lead.FirstName)
	require.Equal(t, "Mustermann", lead.LastName)
	require.Equal(t, "max@ex.com", lead.Email)
	require.Equal(t, "ExCo", lead.Company)
}

func TestNormalizeRowFullNameSplit(t *testing.T) {
	headers := mustHeaders(t, []string{"Name", "Email"})

	lead, rowErr := NormalizeRow([]string{"Max Power Mustermann", "max@ex.com"}, headers, 2)
	require.Nil(t, rowErr)
	require.Equal(t, "Max", lead.FirstName)
	require.Equal(t, "Power Mustermann", lead.LastName)
}

func TestNormalizeRowSingleTokenFullName(t *testing.T) {
	headers := mustHeaders(t, []string{"Name", "Email"})

	lead, rowErr := NormalizeRow([]string{"Cher", "cher@ex.com"}, headers, 2)
	require.Nil(t, rowErr)
	require.Equal(t, "Cher", lead.FirstName)
	require.Equal(t, "", lead.LastName)
}

func TestNormalizeRowMissingNames(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	_, rowErr := NormalizeRow([]string{"", "  ", "max@ex.com"}, headers, 3)
	require.NotNil(t, rowErr)
	require.Equal(t, 3, rowErr.Row)
	require.Equal(t, "row 3: first or last name required", rowErr.Message)
}

func TestNormalizeRowMissingEmail(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	_, rowErr := NormalizeRow([]string{"Max", "Mustermann", "   "}, headers, 4)
	require.NotNil(t, rowErr)
	require.Equal(t, "row 4: email required", rowErr.Message)
}

func TestNormalizeRowEmailValidation(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	cases := []struct {
		email string
		valid bool
	}{
		{"a@b.c", true},
		{"a@b", false},
		{"a@@b.c", false},
		{"a @b.c", false},
		{"max.mustermann@example.com", true},
	}

	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			lead, rowErr := NormalizeRow([]string{"Max", "Mustermann", tc.email}, headers, 2)
			if tc.valid {
				require.Nil(t, rowErr)
				require.Equal(t, tc.email, lead.Email)
			} else {
				require.NotNil(t, rowErr)
				require.Equal(t, fmt.Sprintf("row 2: invalid email (%s)", tc.email), rowErr.Message)
			}
		})
	}
}

func TestNormalizeRowPhoneValidation(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email", "Telefon"})

	cases := []struct {
		phone string
		valid bool
	}{
		{"", true}, // optional field
		{"+49 123 456789", true},
		{"+49-123-(456789)", true},
		{"abc123", false},
		{"0123456", false}, // leading zero
	}

	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			lead, rowErr := NormalizeRow([]string{"Max", "Mustermann", "max@ex.com", tc.phone}, headers, 2)
			if tc.valid {
				require.Nil(t, rowErr)
				require.Equal(t, tc.phone, lead.Phone)
			} else {
				require.NotNil(t, rowErr)
				require.Equal(t, fmt.Sprintf("row 2: invalid phone (%s)", tc.phone), rowErr.Message)
			}
		})
	}
}

func TestNormalizeRowSourceDefaultsWithoutColumn(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	lead, rowErr := NormalizeRow([]string{"Max", "Mustermann", "max@ex.com"}, headers, 2)
	require.Nil(t, rowErr)
	require.Equal(t, "Import", lead.Source)
}

func TestNormalizeRowShortRow(t *testing.T) {
	// Rows narrower than the header must not panic; absent cells read
	// as empty.
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email", "Unternehmen"})

	lead, rowErr := NormalizeRow([]string{"Max", "Mustermann", "max@ex.com"}, headers, 2)
	require.Nil(t, rowErr)
	require.Equal(t, "", lead.Company)
}

func TestNormalizeRowsTotality(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	rows := [][]string{
		{"Max", "Mustermann", "max@ex.com"},
		{"", "", "bad-email"},
		{"Anna", "Schmidt", "anna@ex.com"},
		{"Peter", "Weber", "not-an-email"},
	}

	leads, rowErrs, truncated := NormalizeRows(rows, headers)
	require.False(t, truncated)
	require.Len(t, leads, 2)
	require.Len(t, rowErrs, 2)
	require.Equal(t, len(rows), len(leads)+len(rowErrs))
	require.Equal(t, "row 3: first or last name required", rowErrs[0].Message)
	require.Equal(t, "row 5: invalid email (not-an-email)", rowErrs[1].Message)
}

func TestNormalizeRowsCapsAtMaxImportRows(t *testing.T) {
	headers := mustHeaders(t, []string{"Vorname", "Nachname", "Email"})

	rows := make([][]string, MaxImportRows+50)
	for i := range rows {
		rows[i] = []string{"Max", "Mustermann", fmt.Sprintf("max%d@ex.com", i)}
	}

	leads, rowErrs, truncated := NormalizeRows(rows, headers)
	require.True(t, truncated)
	require.Len(t, leads, MaxImportRows)
	require.Empty(t, rowErrs)
}
