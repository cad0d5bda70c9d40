package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultListLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRunStmt *sql.Stmt
	getRunStmt    *sql.Stmt
}

var sqliteOpen = sql.Open

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sqliteOpen("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			spec_name TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			total_instances INTEGER NOT NULL,
			success_count INTEGER NOT NULL,
			failure_count INTEGER NOT NULL,
			cache_hits INTEGER NOT NULL,
			scores_json TEXT,
			results_json TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_spec ON runs(spec_name, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model, started_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	ctx := context.Background()

	specs := []struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}{
		{
			dst: &s.insertRunStmt,
			query: `
				INSERT INTO runs (
					id, spec_name, provider, model,
					started_at, finished_at,
					total_instances, success_count, failure_count, cache_hits,
					scores_json, results_json
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert run: %w",
		},
		{
			dst: &s.getRunStmt,
			query: `
				SELECT id, spec_name, provider, model,
					started_at, finished_at,
					total_instances, success_count, failure_count, cache_hits,
					scores_json, results_json
				FROM runs
				WHERE id = ?
			`,
			errFmt: "store: prepare get run: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	for _, stmt := range []*sql.Stmt{s.insertRunStmt, s.getRunStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun persists a completed run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}

	id := strings.TrimSpace(run.ID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if strings.TrimSpace(run.SpecName) == "" {
		return errors.New("store: empty spec name")
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		return errors.New("store: missing run timestamps")
	}

	scoresJSON, err := json.Marshal(run.Scores)
	if err != nil {
		return fmt.Errorf("store: marshal scores: %w", err)
	}
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("store: marshal results: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := tx.StmtContext(ctx, s.insertRunStmt)
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		id,
		run.SpecName,
		run.Provider,
		run.Model,
		run.StartedAt.UTC().UnixMilli(),
		run.FinishedAt.UTC().UnixMilli(),
		run.TotalInstances,
		run.SuccessCount,
		run.FailureCount,
		run.CacheHits,
		string(scoresJSON),
		string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit run: %w", err)
	}
	return nil
}

// GetRun loads a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty run id")
	}

	row := s.getRunStmt.QueryRowContext(ctx, id)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return rec, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	query := `
		SELECT id, spec_name, provider, model,
			started_at, finished_at,
			total_instances, success_count, failure_count, cache_hits,
			scores_json, results_json
		FROM runs
		WHERE 1=1
	`
	args := []any{}

	if v := strings.TrimSpace(filter.SpecName); v != "" {
		query += " AND spec_name = ?"
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.Model); v != "" {
		query += " AND model = ?"
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, filter.Since.UTC().UnixMilli())
	}
	if !filter.Until.IsZero() {
		query += " AND started_at <= ?"
		args = append(args, filter.Until.UTC().UnixMilli())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		id           string
		specName     string
		provider     string
		model        string
		startedAtMS  int64
		finishedAtMS int64
		total        int
		success      int
		failure      int
		cacheHits    int
		scoresJSON   sql.NullString
		resultsJSON  sql.NullString
	)
	if err := row.Scan(
		&id, &specName, &provider, &model,
		&startedAtMS, &finishedAtMS,
		&total, &success, &failure, &cacheHits,
		&scoresJSON, &resultsJSON,
	); err != nil {
		return nil, err
	}

	rec := &RunRecord{
		ID:             id,
		SpecName:       specName,
		Provider:       provider,
		Model:          model,
		StartedAt:      time.UnixMilli(startedAtMS).UTC(),
		FinishedAt:     time.UnixMilli(finishedAtMS).UTC(),
		TotalInstances: total,
		SuccessCount:   success,
		FailureCount:   failure,
		CacheHits:      cacheHits,
	}
	if scoresJSON.Valid && scoresJSON.String != "" && scoresJSON.String != "null" {
		if err := json.Unmarshal([]byte(scoresJSON.String), &rec.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
	}
	if resultsJSON.Valid && resultsJSON.String != "" && resultsJSON.String != "null" {
		if err := json.Unmarshal([]byte(resultsJSON.String), &rec.Results); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
	}
	return rec, nil
}
