package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eduhub/api/internal/models"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, contact models.Contact) error {
	const query = `
		INSERT INTO contacts (id, name, email, phone, subject, message, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Subject,
		contact.Message,
		contact.Status,
		contact.SubmittedAt,
	)
	return err
}

func (r *ContactRepository) List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.Contact, error) {
	start, end := filter.Range(now)
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, name, email, phone, subject, message, status, submitted_at, updated_at
		FROM contacts
		WHERE submitted_at >= $1 AND submitted_at <= $2
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%'
		               OR email ILIKE '%' || $3 || '%'
		               OR phone LIKE '%' || $3 || '%')
		ORDER BY submitted_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, start, end, filter.Search, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Email,
			&contact.Phone,
			&contact.Subject,
			&contact.Message,
			&contact.Status,
			&contact.SubmittedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE contacts SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *ContactRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	return countByStatus(ctx, r.pool, "contacts")
}

func (r *ContactRepository) DailyCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	return dailyCounts(ctx, r.pool, "contacts", since)
}

func (r *ContactRepository) AvgResponseHours(ctx context.Context) (float64, error) {
	return avgResponseHours(ctx, r.pool, "contacts")
}
