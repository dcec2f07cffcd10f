package importer

import (
	"strings"

	"github.com/mhartmann/leadcrm/internal/domain"
)

// Outcome is the immutable result of reconciling a validated batch
// against the existing contact set.
type Outcome struct {
	NewLeads   []Lead     `json:"newLeads"`
	Duplicates []Lead     `json:"duplicates"`
	Errors     []RowError `json:"errors"`
}

// Partition splits validated leads into new and duplicate sets by
// case-insensitive email match against the existing contacts. Row
// errors from normalization pass through unchanged. Input order is
// preserved within each partition. The function performs no I/O.
func Partition(leads []Lead, rowErrs []RowError, existing []domain.Contact) Outcome {
	existingEmails := make(map[string]struct{}, len(existing))
	for _, contact := range existing {
		existingEmails[strings.ToLower(contact.Email)] = struct{}{}
	}

	outcome := Outcome{Errors: rowErrs}
	for _, lead := range leads {
		if _, ok := existingEmails[strings.ToLower(lead.Email)]; ok {
			outcome.Duplicates = append(outcome.Duplicates, lead)
		} else {
			outcome.NewLeads = append(outcome.NewLeads, lead)
		}
	}

	return outcome
}

// ComputeMerge derives the merge update for a duplicate lead against
// its existing contact. Existing values win; the import only fills
// gaps, except notes which are appended. The second return is false
// when applying the update would be a no-op, in which case no write
// should be issued.
func ComputeMerge(existing domain.Contact, dup Lead) (domain.ContactUpdate, bool) {
	update := domain.ContactUpdate{
		Company: firstNonEmpty(existing.Company, dup.Company),
		Phone:   firstNonEmpty(existing.Phone, dup.Phone),
		Source:  firstNonEmpty(existing.Source, dup.Source, DefaultSource),
	}

	if existing.Notes != "" {
		update.Notes = strings.TrimSpace(existing.Notes + "\n\nImport: " + dup.Notes)
	} else {
		update.Notes = strings.TrimSpace(dup.Notes)
	}

	changed := update.Company != existing.Company ||
		update.Phone != existing.Phone ||
		update.Notes != existing.Notes ||
		update.Source != existing.Source

	return update, changed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
