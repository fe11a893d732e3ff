package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eduhub/api/internal/models"
)

type VisitRepository struct {
	pool *pgxpool.Pool
}

func NewVisitRepository(pool *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{pool: pool}
}

func (r *VisitRepository) Create(ctx context.Context, visit models.CampusVisit) error {
	const query = `
		INSERT INTO campus_visits (id, full_name, email, phone, program_interest, visit_date, visit_time, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		visit.ID,
		visit.FullName,
		visit.Email,
		visit.Phone,
		visit.ProgramInterest,
		visit.VisitDate,
		visit.VisitTime,
		visit.Status,
		visit.SubmittedAt,
	)
	return err
}

func (r *VisitRepository) List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.CampusVisit, error) {
	start, end := filter.Range(now)
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, full_name, email, phone, program_interest, visit_date, visit_time, status, submitted_at, updated_at
		FROM campus_visits
		WHERE submitted_at >= $1 AND submitted_at <= $2
		  AND ($3 = '' OR full_name ILIKE '%' || $3 || '%'
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

	var visits []models.CampusVisit
	for rows.Next() {
		var visit models.CampusVisit
		if err := rows.Scan(
			&visit.ID,
			&visit.FullName,
			&visit.Email,
			&visit.Phone,
			&visit.ProgramInterest,
			&visit.VisitDate,
			&visit.VisitTime,
			&visit.Status,
			&visit.SubmittedAt,
			&visit.UpdatedAt,
		); err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

func (r *VisitRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE campus_visits SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
