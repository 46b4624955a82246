package labels

import (
	"context"

	"ptre-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createLabelTables = `
CREATE TABLE IF NOT EXISTS trend_labels (
    ticker       TEXT        NOT NULL,
    trade_date   TIMESTAMPTZ NOT NULL,
    risk_adj_ret DOUBLE PRECISION NOT NULL,
    label        SMALLINT    NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (ticker, trade_date)
);

CREATE TABLE IF NOT EXISTS momentum_labels (
    ticker     TEXT        NOT NULL,
    trade_date TIMESTAMPTZ NOT NULL,
    label      SMALLINT    NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (ticker, trade_date)
);
`

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	pool   pool
	tracer trace.Tracer
}

func NewRepository(pool pool, tracer trace.Tracer) *Repository {
	return &Repository{pool: pool, tracer: tracer}
}

func (r *Repository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "label-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createLabelTables)
	return err
}

func (r *Repository) UpsertTrendLabels(ctx context.Context, rows []domain.TrendLabelRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, span := r.tracer.Start(ctx, "label-repo.upsert-trend")
	defer span.End()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO trend_labels (ticker, trade_date, risk_adj_ret, label, updated_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (ticker, trade_date) DO UPDATE SET
			     risk_adj_ret = EXCLUDED.risk_adj_ret,
			     label = EXCLUDED.label,
			     updated_at = NOW()`,
			row.Ticker, row.Date.UTC(), row.RiskAdjReturn, row.Label,
		)
	}
	return execBatch(ctx, r.pool, batch, len(rows))
}

func (r *Repository) UpsertMomentumLabels(ctx context.Context, rows []domain.MomentumLabelRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, span := r.tracer.Start(ctx, "label-repo.upsert-momentum")
	defer span.End()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO momentum_labels (ticker, trade_date, label, updated_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (ticker, trade_date) DO UPDATE SET
			     label = EXCLUDED.label,
			     updated_at = NOW()`,
			row.Ticker, row.Date.UTC(), row.Label,
		)
	}
	return execBatch(ctx, r.pool, batch, len(rows))
}

func (r *Repository) ListTrendLabels(ctx context.Context, ticker string) ([]domain.TrendLabelRow, error) {
	_, span := r.tracer.Start(ctx, "label-repo.list-trend")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, trade_date, risk_adj_ret, label
		 FROM trend_labels
		 WHERE ticker = $1
		 ORDER BY trade_date ASC`,
		ticker,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.TrendLabelRow, 0)
	for rows.Next() {
		var row domain.TrendLabelRow
		if err := rows.Scan(&row.Ticker, &row.Date, &row.RiskAdjReturn, &row.Label); err != nil {
			return nil, err
		}
		row.Date = row.Date.UTC()
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) ListMomentumLabels(ctx context.Context, ticker string) ([]domain.MomentumLabelRow, error) {
	_, span := r.tracer.Start(ctx, "label-repo.list-momentum")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, trade_date, label
		 FROM momentum_labels
		 WHERE ticker = $1
		 ORDER BY trade_date ASC`,
		ticker,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.MomentumLabelRow, 0)
	for rows.Next() {
		var row domain.MomentumLabelRow
		if err := rows.Scan(&row.Ticker, &row.Date, &row.Label); err != nil {
			return nil, err
		}
		row.Date = row.Date.UTC()
		result = append(result, row)
	}
	return result, rows.Err()
}

func execBatch(ctx context.Context, p pool, batch *pgx.Batch, n int) error {
	br := p.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
