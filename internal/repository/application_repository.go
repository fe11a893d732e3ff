package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhub/api/internal/models"
)

var ErrLeadNotFound = errors.New("lead not found")

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) Create(ctx context.Context, app models.Application) error {
	const query = `
		INSERT INTO applications (
			id, first_name, last_name, email, phone, date_of_birth, gender, nationality,
			address, city, state, zip_code, country, program_type, program_interest, intake,
			last_school, last_degree, graduation_year, percentage, extra_curricular, why_join,
			status, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22,
			$23, $24
		)
	`

	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		app.DateOfBirth,
		app.Gender,
		app.Nationality,
		app.Address,
		app.City,
		app.State,
		app.ZipCode,
		app.Country,
		app.ProgramType,
		app.ProgramInterest,
		app.Intake,
		app.LastSchool,
		app.LastDegree,
		app.GraduationYear,
		app.Percentage,
		app.ExtraCurricular,
		app.WhyJoin,
		app.Status,
		app.SubmittedAt,
	)
	return err
}

func (r *ApplicationRepository) List(ctx context.Context, filter models.LeadFilter, now time.Time) ([]models.Application, error) {
	start, end := filter.Range(now)
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, first_name, last_name, email, phone, date_of_birth, gender, nationality,
		       address, city, state, zip_code, country, program_type, program_interest, intake,
		       last_school, last_degree, graduation_year, percentage, extra_curricular, why_join,
		       status, submitted_at, updated_at
		FROM applications
		WHERE submitted_at >= $1 AND submitted_at <= $2
		  AND ($3 = '' OR first_name ILIKE '%' || $3 || '%'
		               OR last_name ILIKE '%' || $3 || '%'
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

	var apps []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(
			&app.ID,
			&app.FirstName,
			&app.LastName,
			&app.Email,
			&app.Phone,
			&app.DateOfBirth,
			&app.Gender,
			&app.Nationality,
			&app.Address,
			&app.City,
			&app.State,
			&app.ZipCode,
			&app.Country,
			&app.ProgramType,
			&app.ProgramInterest,
			&app.Intake,
			&app.LastSchool,
			&app.LastDegree,
			&app.GraduationYear,
			&app.Percentage,
			&app.ExtraCurricular,
			&app.WhyJoin,
			&app.Status,
			&app.SubmittedAt,
			&app.UpdatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	const query = `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	return countByStatus(ctx, r.pool, "applications")
}

func (r *ApplicationRepository) DailyCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	return dailyCounts(ctx, r.pool, "applications", since)
}

func (r *ApplicationRepository) AvgResponseHours(ctx context.Context) (float64, error) {
	return avgResponseHours(ctx, r.pool, "applications")
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	const query = `
		SELECT id, first_name, last_name, email, phone, date_of_birth, gender, nationality,
		       address, city, state, zip_code, country, program_type, program_interest, intake,
		       last_school, last_degree, graduation_year, percentage, extra_curricular, why_join,
		       status, submitted_at, updated_at
		FROM applications WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var app models.Application
	if err := row.Scan(
		&app.ID,
		&app.FirstName,
		&app.LastName,
		&app.Email,
		&app.Phone,
		&app.DateOfBirth,
		&app.Gender,
		&app.Nationality,
		&app.Address,
		&app.City,
		&app.State,
		&app.ZipCode,
		&app.Country,
		&app.ProgramType,
		&app.ProgramInterest,
		&app.Intake,
		&app.LastSchool,
		&app.LastDegree,
		&app.GraduationYear,
		&app.Percentage,
		&app.ExtraCurricular,
		&app.WhyJoin,
		&app.Status,
		&app.SubmittedAt,
		&app.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, ErrLeadNotFound
		}
		return models.Application{}, err
	}
	return app, nil
}
