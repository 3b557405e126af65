package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zvidmar/inventura/internal/model"
)

// DefaultStatsMonths is the default window for the monthly sales breakdown.
const DefaultStatsMonths = 6

// ComputeStatistics computes the aggregate figures over all items. Figures
// are recomputed on every call; missing prices count as zero. months bounds
// the monthly breakdown (most recent first); values below one fall back to
// DefaultStatsMonths.
func ComputeStatistics(ctx context.Context, db *sql.DB, months int) (*model.Statistics, error) {
	if months < 1 {
		months = DefaultStatsMonths
	}

	stats := &model.Statistics{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN sold = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN sold = 1 AND payment_received = 0 THEN 1 ELSE 0 END), 0)
		 FROM items`,
	).Scan(&stats.TotalItems, &stats.SoldItems, &stats.UnpaidItems)
	if err != nil {
		return nil, fmt.Errorf("computing item counts: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(COALESCE(price, 0)), 0) FROM items WHERE sold = 1`,
	).Scan(&stats.TotalSales)
	if err != nil {
		return nil, fmt.Errorf("computing total sales: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', created_at) AS month,
		        COUNT(*),
		        SUM(COALESCE(price, 0))
		 FROM items
		 WHERE sold = 1 AND created_at IS NOT NULL
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT ?`, months,
	)
	if err != nil {
		return nil, fmt.Errorf("computing monthly sales: %w", err)
	}
	defer rows.Close()

	stats.SalesByMonth = []model.MonthlySales{}
	for rows.Next() {
		var m model.MonthlySales
		if err := rows.Scan(&m.Month, &m.Items, &m.Sales); err != nil {
			return nil, fmt.Errorf("scanning monthly sales: %w", err)
		}
		stats.SalesByMonth = append(stats.SalesByMonth, m)
	}
	return stats, rows.Err()
}
