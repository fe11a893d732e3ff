package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eduhub/api/internal/models"
)

// Aggregate helpers shared by the lead repositories. The table name is
// always one of the fixed lead tables, never user input.

func countByStatus(ctx context.Context, pool *pgxpool.Pool, table string) (map[models.LeadStatus]int, error) {
	rows, err := pool.Query(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.LeadStatus]int{
		models.LeadStatusNew:        0,
		models.LeadStatusInProgress: 0,
		models.LeadStatusCompleted:  0,
	}
	for rows.Next() {
		var status models.LeadStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func dailyCounts(ctx context.Context, pool *pgxpool.Pool, table string, since time.Time) (map[string]int, error) {
	query := `
		SELECT TO_CHAR(submitted_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM ` + table + `
		WHERE submitted_at >= $1
		GROUP BY day
	`

	rows, err := pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

func avgResponseHours(ctx context.Context, pool *pgxpool.Pool, table string) (float64, error) {
	query := `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - submitted_at)) / 3600), 0)
		FROM ` + table + `
		WHERE updated_at IS NOT NULL AND updated_at > submitted_at
	`

	var hours float64
	if err := pool.QueryRow(ctx, query).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}
