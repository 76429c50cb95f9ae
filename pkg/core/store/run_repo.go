package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"threestmt/pkg/core/pipeline"
)

// RunRepo stores pipeline results keyed by run ID. It satisfies
// pipeline.Repository.
type RunRepo struct{}

// NewRunRepo creates a new repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// SaveRun upserts a finished run as one JSONB blob. A single blob keeps the
// schema stable while the result shape evolves.
//
// Schema assumption (migrations managed elsewhere):
//
//	CREATE TABLE IF NOT EXISTS model_runs (
//	  run_id UUID PRIMARY KEY,
//	  mode TEXT,
//	  result_json JSONB,
//	  created_at TIMESTAMPTZ
//	);
func (r *RunRepo) SaveRun(ctx context.Context, result *pipeline.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}

	query := `
		INSERT INTO model_runs (run_id, mode, result_json, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET
			mode = EXCLUDED.mode,
			result_json = EXCLUDED.result_json;
	`

	if _, err := pool.Exec(ctx, query, result.RunID, string(result.Mode), jsonData, time.Now()); err != nil {
		return fmt.Errorf("save run %s: %w", result.RunID, err)
	}
	return nil
}

// LoadRun retrieves one stored run by ID.
func (r *RunRepo) LoadRun(ctx context.Context, runID string) (*pipeline.Result, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT result_json FROM model_runs WHERE run_id = $1`, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", runID, pipeline.ErrRunNotFound)
		}
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	var result pipeline.Result
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	return &result, nil
}
