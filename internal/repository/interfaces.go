package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhartmann/leadcrm/internal/domain"
)

// ContactRepository defines the persistent contact store consumed by
// the import pipeline and the CRUD surface. No transactional guarantee
// spans consecutive calls; the import commit is best effort.
type ContactRepository interface {
	// List returns all contacts owned by the user, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	Create(ctx context.Context, userID uuid.UUID, fields domain.ContactFields) (domain.Contact, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ContactUpdate) (domain.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImportLogRepository records row level and commit time import errors
// for later inspection.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, userID uuid.UUID, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error)
}
