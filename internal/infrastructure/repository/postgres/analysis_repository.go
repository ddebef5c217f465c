package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	input JSONB NOT NULL,
	status TEXT NOT NULL,
	result JSONB,
	overall_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Create(ctx context.Context, analysis *domain.Analysis) error {
	inputJSON, err := json.Marshal(analysis.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO analyses (
	id, description, input, status, overall_confidence, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		analysis.ID, analysis.Input.Description, inputJSON, string(analysis.Status),
		analysis.OverallConfidence, analysis.Error, analysis.CreatedAt, analysis.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, input, status, result, overall_confidence, error_message, created_at, updated_at, completed_at
FROM analyses
WHERE id = $1
`, id)

	var analysis domain.Analysis
	var inputRaw []byte
	var resultRaw []byte
	var status string
	var completedAt sql.NullTime

	err := row.Scan(
		&analysis.ID, &inputRaw, &status, &resultRaw, &analysis.OverallConfidence,
		&analysis.Error, &analysis.CreatedAt, &analysis.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrAnalysisNotFound, "get analysis", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan analysis: %w", err)
	}

	if err := json.Unmarshal(inputRaw, &analysis.Input); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &analysis.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		analysis.CompletedAt = &t
	}
	analysis.Status = domain.AnalysisStatus(status)
	return &analysis, nil
}

func (r *AnalysisRepository) UpdateStatus(ctx context.Context, id string, status domain.AnalysisStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE analyses
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update analysis status: %w", err)
	}
	return ensureRowUpdated(res, id)
}

func (r *AnalysisRepository) SaveResult(ctx context.Context, id string, result map[string]any, overallConfidence float64) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE analyses
SET status = $2, result = $3, overall_confidence = $4, error_message = '', updated_at = $5, completed_at = $5
WHERE id = $1
`, id, string(domain.StatusCompleted), resultJSON, overallConfidence, now)
	if err != nil {
		return fmt.Errorf("save analysis result: %w", err)
	}
	return ensureRowUpdated(res, id)
}

func ensureRowUpdated(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrAnalysisNotFound, "update analysis", fmt.Errorf("id %s", id))
	}
	return nil
}
