package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is a persisted plan execution.
type Run struct {
	Seq      int64  `json:"seq"`
	ID       string `json:"id"`
	Plan     string `json:"plan"`
	Seed     int64  `json:"seed"`
	Episodes int    `json:"episodes"`
	MaxSteps int    `json:"max_steps"`
	Pass     bool   `json:"pass"`
}

// CheckRecord is one persisted check outcome.
type CheckRecord struct {
	RunID   string `json:"run_id"`
	Task    string `json:"task"`
	Check   string `json:"check"`
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Step    int    `json:"step"`
	Message string `json:"message,omitempty"`
}

// FingerprintRecord is one persisted trajectory fingerprint together with
// the parameters of the run that produced it.
type FingerprintRecord struct {
	RunSeq      int64  `json:"run_seq"`
	RunID       string `json:"run_id"`
	Task        string `json:"task"`
	Seed        int64  `json:"seed"`
	Episodes    int    `json:"episodes"`
	MaxSteps    int    `json:"max_steps"`
	Fingerprint string `json:"fingerprint"`
	Steps       int    `json:"steps"`
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, plan, seed, episodes, max_steps, pass
		FROM runs
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Seq, &r.ID, &r.Plan, &r.Seed, &r.Episodes, &r.MaxSteps, &r.Pass); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, id, plan, seed, episodes, max_steps, pass
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.Seq, &r.ID, &r.Plan, &r.Seed, &r.Episodes, &r.MaxSteps, &r.Pass)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadCheckResults returns the checks of a run in execution order.
func (s *Store) ReadCheckResults(ctx context.Context, runID string) ([]CheckRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, task, check_name, status, code, field, step, message
		FROM check_results
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read check results: %w", err)
	}
	defer rows.Close()

	records := []CheckRecord{}
	for rows.Next() {
		var c CheckRecord
		if err := rows.Scan(&c.RunID, &c.Task, &c.Check, &c.Status, &c.Code, &c.Field, &c.Step, &c.Message); err != nil {
			return nil, fmt.Errorf("read check results: scan: %w", err)
		}
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read check results: %w", err)
	}
	return records, nil
}

// ReadFingerprints returns every fingerprint, grouped by task and trajectory
// parameters and newest first within a group.
func (s *Store) ReadFingerprints(ctx context.Context) ([]FingerprintRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.seq, r.id, f.task, r.seed, r.episodes, r.max_steps, f.fingerprint, f.steps
		FROM fingerprints f
		JOIN runs r ON r.id = f.run_id
		ORDER BY f.task COLLATE BINARY ASC, r.seed ASC, r.episodes ASC, r.max_steps ASC, r.seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("read fingerprints: %w", err)
	}
	defer rows.Close()

	records := []FingerprintRecord{}
	for rows.Next() {
		var f FingerprintRecord
		if err := rows.Scan(&f.RunSeq, &f.RunID, &f.Task, &f.Seed, &f.Episodes, &f.MaxSteps, &f.Fingerprint, &f.Steps); err != nil {
			return nil, fmt.Errorf("read fingerprints: scan: %w", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fingerprints: %w", err)
	}
	return records, nil
}
