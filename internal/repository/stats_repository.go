package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yafi/support-backend/internal/domain"
)

// StatusTotals aggregates ticket counts per lifecycle state.
type StatusTotals struct {
	Total      int
	InProgress int
	Resolved   int
	Rejected   int
}

// MonthlyCounts holds per-month totals for a calendar year.
type MonthlyCounts struct {
	Month    int
	Total    int
	Resolved int
}

// StatsRepository serves the read-side reporting queries.
type StatsRepository interface {
	TotalsByAgent(ctx context.Context, agentID string, year, month int) (StatusTotals, error)
	TotalsGlobal(ctx context.Context, year int) (StatusTotals, error)
	MonthlyByAgent(ctx context.Context, agentID string, year int) ([]MonthlyCounts, error)
	MonthlyGlobal(ctx context.Context, year int) ([]MonthlyCounts, error)
	// AvgResolutionSeconds averages updated_at-created_at over resolved
	// tickets; zero when none resolved.
	AvgResolutionSeconds(ctx context.Context, agentID *string, year, month int) (float64, error)
	MostFrequentTitle(ctx context.Context, year int) (string, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) TotalsByAgent(ctx context.Context, agentID string, year, month int) (StatusTotals, error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status=$2),
               COUNT(*) FILTER (WHERE status=$3),
               COUNT(*) FILTER (WHERE status=$4)
        FROM tickets WHERE agent_id=$1`
	args := []any{agentID, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected}
	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM created_at) = $%d", len(args))
	}
	if month > 0 {
		args = append(args, month)
		query += fmt.Sprintf(" AND EXTRACT(MONTH FROM created_at) = $%d", len(args))
	}

	var totals StatusTotals
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&totals.Total, &totals.InProgress, &totals.Resolved, &totals.Rejected,
	); err != nil {
		return StatusTotals{}, err
	}
	return totals, nil
}

func (r *statsRepository) TotalsGlobal(ctx context.Context, year int) (StatusTotals, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status=$2),
               COUNT(*) FILTER (WHERE status=$3),
               COUNT(*) FILTER (WHERE status=$4)
        FROM tickets WHERE EXTRACT(YEAR FROM created_at) = $1`

	var totals StatusTotals
	if err := r.pool.QueryRow(ctx, query, year,
		domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected,
	).Scan(&totals.Total, &totals.InProgress, &totals.Resolved, &totals.Rejected); err != nil {
		return StatusTotals{}, err
	}
	return totals, nil
}

func (r *statsRepository) MonthlyByAgent(ctx context.Context, agentID string, year int) ([]MonthlyCounts, error) {
	const query = `
        SELECT EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*),
               COUNT(*) FILTER (WHERE status=$3)
        FROM tickets
        WHERE agent_id=$1 AND EXTRACT(YEAR FROM created_at) = $2
        GROUP BY month ORDER BY month`

	rows, err := r.pool.Query(ctx, query, agentID, year, domain.TicketStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMonthly(rows)
}

func (r *statsRepository) MonthlyGlobal(ctx context.Context, year int) ([]MonthlyCounts, error) {
	const query = `
        SELECT EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*),
               COUNT(*) FILTER (WHERE status=$2)
        FROM tickets
        WHERE EXTRACT(YEAR FROM created_at) = $1
        GROUP BY month ORDER BY month`

	rows, err := r.pool.Query(ctx, query, year, domain.TicketStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMonthly(rows)
}

func (r *statsRepository) AvgResolutionSeconds(ctx context.Context, agentID *string, year, month int) (float64, error) {
	query := `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at))), 0)
        FROM tickets WHERE status=$1`
	args := []any{domain.TicketStatusResolved}
	if agentID != nil {
		args = append(args, *agentID)
		query += fmt.Sprintf(" AND agent_id = $%d", len(args))
	}
	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM created_at) = $%d", len(args))
	}
	if month > 0 {
		args = append(args, month)
		query += fmt.Sprintf(" AND EXTRACT(MONTH FROM created_at) = $%d", len(args))
	}

	var avg float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *statsRepository) MostFrequentTitle(ctx context.Context, year int) (string, error) {
	const query = `
        SELECT title FROM tickets
        WHERE EXTRACT(YEAR FROM created_at) = $1
        GROUP BY title ORDER BY COUNT(*) DESC, title ASC LIMIT 1`

	var title string
	err := r.pool.QueryRow(ctx, query, year).Scan(&title)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

func scanMonthly(rows pgx.Rows) ([]MonthlyCounts, error) {
	var result []MonthlyCounts
	for rows.Next() {
		var mc MonthlyCounts
		if err := rows.Scan(&mc.Month, &mc.Total, &mc.Resolved); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	return result, rows.Err()
}
