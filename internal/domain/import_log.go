package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLogEntry captures row level and commit time issues that occur
// during a lead import.
type ImportLogEntry struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	FileName     string    `json:"file_name"`
	RowNumber    *int      `json:"row_number,omitempty"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
