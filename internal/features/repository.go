package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ptre-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createFeatureRowsTable = `
CREATE TABLE IF NOT EXISTS feature_rows (
    ticker        TEXT        NOT NULL,
    trade_date    TIMESTAMPTZ NOT NULL,
    spec_version  TEXT        NOT NULL,
    values        JSONB       NOT NULL,
    anomaly_score DOUBLE PRECISION,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (ticker, trade_date)
);

CREATE INDEX IF NOT EXISTS idx_feature_rows_ticker_date
    ON feature_rows (ticker, trade_date DESC);
`

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool   pool
	tracer trace.Tracer
}

func NewRepository(pool pool, tracer trace.Tracer) *Repository {
	return &Repository{pool: pool, tracer: tracer}
}

func (r *Repository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "feature-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createFeatureRowsTable)
	return err
}

func (r *Repository) UpsertRows(ctx context.Context, rows []domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, span := r.tracer.Start(ctx, "feature-repo.upsert-rows")
	defer span.End()

	batch := &pgx.Batch{}
	for i := range rows {
		row := rows[i]
		payload, err := json.Marshal(row.Values)
		if err != nil {
			return fmt.Errorf("marshal feature row %s@%s: %w", row.Ticker, row.Date.Format("2006-01-02"), err)
		}
		batch.Queue(
			`INSERT INTO feature_rows (ticker, trade_date, spec_version, values, anomaly_score, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 ON CONFLICT (ticker, trade_date) DO UPDATE SET
			     spec_version = EXCLUDED.spec_version,
			     values = EXCLUDED.values,
			     anomaly_score = EXCLUDED.anomaly_score,
			     updated_at = NOW()`,
			row.Ticker, row.Date.UTC(), SpecVersion, payload, row.AnomalyScore,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) ListRows(ctx context.Context, ticker string) ([]domain.FeatureRow, error) {
	_, span := r.tracer.Start(ctx, "feature-repo.list-rows")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, trade_date, values, anomaly_score
		 FROM feature_rows
		 WHERE ticker = $1 AND spec_version = $2
		 ORDER BY trade_date ASC`,
		ticker, SpecVersion,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.FeatureRow, 0)
	for rows.Next() {
		row, err := scanFeatureRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetLatestRow returns the most recent feature row for a ticker. Returns
// domain.ErrMissingArtifact when the ticker has no feature rows at all.
func (r *Repository) GetLatestRow(ctx context.Context, ticker string) (domain.FeatureRow, error) {
	_, span := r.tracer.Start(ctx, "feature-repo.get-latest-row")
	defer span.End()

	row, err := scanFeatureRow(r.pool.QueryRow(ctx,
		`SELECT ticker, trade_date, values, anomaly_score
		 FROM feature_rows
		 WHERE ticker = $1 AND spec_version = $2
		 ORDER BY trade_date DESC
		 LIMIT 1`,
		ticker, SpecVersion,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FeatureRow{}, fmt.Errorf("features for %s: %w", ticker, domain.ErrMissingArtifact)
	}
	if err != nil {
		return domain.FeatureRow{}, err
	}
	return row, nil
}

func scanFeatureRow(row pgx.Row) (domain.FeatureRow, error) {
	var out domain.FeatureRow
	var payload []byte
	if err := row.Scan(&out.Ticker, &out.Date, &payload, &out.AnomalyScore); err != nil {
		return domain.FeatureRow{}, err
	}
	out.Date = out.Date.UTC()
	if err := json.Unmarshal(payload, &out.Values); err != nil {
		return domain.FeatureRow{}, err
	}
	return out, nil
}
