package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact statuses as persisted in the contacts table.
const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInterested = "interested"
	StatusQualified  = "qualified"
)

// Contact is the canonical persisted lead record. Identity is owned by
// the store; the import pipeline only proposes creates and merge
// updates.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ContactFields carries the writable columns for a create call.
type ContactFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	Notes     string `json:"notes"`
}

// ContactUpdate carries the columns touched by a merge update.
type ContactUpdate struct {
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
	Source  string `json:"source"`
}
