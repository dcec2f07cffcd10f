package importer

import (
	"errors"
	"strings"
)

// Role is a canonical semantic field a table column may be mapped to.
type Role string

const (
	RoleFirstName Role = "first_name"
	RoleLastName  Role = "last_name"
	RoleFullName  Role = "full_name"
	RoleEmail     Role = "email"
	RoleCompany   Role = "company"
	RolePhone     Role = "phone"
	RoleWebsite   Role = "website"
	RoleSource    Role = "source"
	RoleNotes     Role = "notes"
)

// Structural failures invalidate the whole file before any row is
// processed, as opposed to row level validation errors.
var (
	ErrNoEmailColumn = errors.New("no email column detected")
	ErrNoNameColumns = errors.New("file must contain first and last name columns, or a name column")
)

// roleKeywords drives header detection. A lower-cased, trimmed header
// cell belongs to a role when it contains any of the role's keywords.
// German and English namings are both recognised.
var roleKeywords = map[Role][]string{
	RoleFirstName: {"vorname", "first", "firstname", "first_name"},
	RoleLastName:  {"nachname", "last", "lastname", "last_name", "surname"},
	RoleEmail:     {"email", "e-mail"},
	RoleCompany:   {"company", "unternehmen", "firma"},
	RolePhone:     {"phone", "telefon", "tel"},
	RoleWebsite:   {"website", "webseite", "url"},
	RoleSource:    {"source", "quelle"},
	RoleNotes:     {"notes", "notizen", "bemerkung"},
}

// fullNameExclusions keeps specific name columns (Vorname, Nachname,
// first_name, ...) from satisfying the generic name role.
var fullNameExclusions = []string{"first", "last", "vor", "nach"}

// detectionOrder fixes the scan order so detection is deterministic.
var detectionOrder = []Role{
	RoleFirstName, RoleLastName, RoleFullName, RoleEmail,
	RoleCompany, RolePhone, RoleWebsite, RoleSource, RoleNotes,
}

// HeaderMap maps roles to zero-based column indexes. A missing key
// means no header matched the role.
type HeaderMap map[Role]int

// Has reports whether a column was mapped for the role.
func (m HeaderMap) Has(role Role) bool {
	_, ok := m[role]
	return ok
}

// Column returns the mapped column index, or -1 when absent.
func (m HeaderMap) Column(role Role) int {
	idx, ok := m[role]
	if !ok {
		return -1
	}
	return idx
}

// DetectHeaders maps the header row to field roles. Matching is
// first-match-wins per role, scanning columns left to right. It fails
// with a structural error when no email column is found, or when
// neither a first+last name pair nor a generic name column is present.
func DetectHeaders(headerRow []string) (HeaderMap, error) {
	cells := make([]string, len(headerRow))
	for i, cell := range headerRow {
		cells[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	mapped := make(HeaderMap)
	for _, role := range detectionOrder {
		for idx, cell := range cells {
			if cell == "" {
				continue
			}
			if matchesRole(role, cell) {
				mapped[role] = idx
				break
			}
		}
	}

	if !mapped.Has(RoleEmail) {
		return nil, ErrNoEmailColumn
	}
	if !(mapped.Has(RoleFirstName) && mapped.Has(RoleLastName)) && !mapped.Has(RoleFullName) {
		return nil, ErrNoNameColumns
	}

	return mapped, nil
}

func matchesRole(role Role, cell string) bool {
	if role == RoleFullName {
		if !strings.Contains(cell, "name") {
			return false
		}
		for _, excluded := range fullNameExclusions {
			if strings.Contains(cell, excluded) {
				return false
			}
		}
		return true
	}

	for _, keyword := range roleKeywords[role] {
		if strings.Contains(cell, keyword) {
			return true
		}
	}
	return false
}
