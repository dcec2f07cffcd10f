package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhartmann/leadcrm/internal/domain"
)

const contactColumns = `id, user_id, first_name, last_name, email, company, phone, website, status, source, notes, created_at, updated_at`

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository wires a contact repository backed by pgxpool.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+contactColumns+`
		 FROM contacts
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		contact, scanErr := scanContact(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		contacts = append(contacts, contact)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", rowsErr)
	}

	return contacts, nil
}

func (r *contactRepository) Create(ctx context.Context, userID uuid.UUID, fields domain.ContactFields) (domain.Contact, error) {
	status := fields.Status
	if status == "" {
		status = domain.StatusNew
	}

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO contacts (user_id, first_name, last_name, email, company, phone, website, status, source, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+contactColumns,
		userID,
		fields.FirstName,
		fields.LastName,
		fields.Email,
		fields.Company,
		fields.Phone,
		fields.Website,
		status,
		fields.Source,
		fields.Notes,
	)

	contact, err := scanContact(row)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (r *contactRepository) Update(ctx context.Context, id uuid.UUID, update domain.ContactUpdate) (domain.Contact, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE contacts
		 SET company = $2, phone = $3, notes = $4, source = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+contactColumns,
		id,
		update.Company,
		update.Phone,
		update.Notes,
		update.Source,
	)

	contact, err := scanContact(row)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanContact(row pgx.Row) (domain.Contact, error) {
	var contact domain.Contact
	if err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Company,
		&contact.Phone,
		&contact.Website,
		&contact.Status,
		&contact.Source,
		&contact.Notes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return domain.Contact{}, fmt.Errorf("failed to scan contact: %w", err)
	}
	return contact, nil
}
