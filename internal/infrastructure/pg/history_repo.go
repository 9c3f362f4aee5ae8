package pg

import (
	"context"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"
)

type HistoryRepo struct{ db *DB }

var _ application.HistorySink = (*HistoryRepo)(nil)

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Append(ctx context.Context, points []domain.PricePoint) error {
	const ins = `
        INSERT INTO price_history(symbol, price, recorded_at, source)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (symbol, recorded_at) DO NOTHING`
	for _, p := range points {
		if _, err := r.db.Pool.Exec(ctx, ins, p.Symbol, p.Price, p.RecordedAt, p.Source); err != nil {
			return err
		}
	}
	return nil
}

// RecentBySymbol returns up to limit points for one symbol, newest first.
func (r *HistoryRepo) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error) {
	const q = `
        SELECT symbol, price::float8, recorded_at, source
        FROM price_history
        WHERE symbol=$1
        ORDER BY recorded_at DESC
        LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Price, &p.RecordedAt, &p.Source); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
