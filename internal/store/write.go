package store

import (
	"context"
	"fmt"

	"github.com/roach88/suitecheck/internal/harness"
)

// WriteResult persists a plan result under runID in one transaction: the
// run row, one check_results row per check, and one fingerprints row per
// conformance check that produced a fingerprint.
//
// Writing the same runID twice fails on the UNIQUE constraint of runs.id.
func (s *Store) WriteResult(ctx context.Context, runID string, res *harness.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write result: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, plan, seed, episodes, max_steps, pass)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, res.Plan, res.Seed, res.Episodes, res.MaxStepsPerEpisode, res.Pass)
	if err != nil {
		return fmt.Errorf("write result: run %s: %w", runID, err)
	}

	ordinal := 0
	for _, tr := range res.Tasks {
		task := tr.Task.String()
		for _, cr := range tr.Checks {
			code, field, message, step := "", "", "", -1
			if cr.Error != nil {
				code = string(cr.Error.Code)
				field = cr.Error.Field
				message = cr.Error.Message
				step = cr.Error.Step
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO check_results
				(run_id, ordinal, task, check_name, status, code, field, step, message)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, runID, ordinal, task, string(cr.Check), string(cr.Status), code, field, step, message)
			if err != nil {
				return fmt.Errorf("write result: check %s %s: %w", task, cr.Check, err)
			}
			ordinal++

			if cr.Fingerprint == "" {
				continue
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO fingerprints (run_id, task, fingerprint, steps)
				VALUES (?, ?, ?, ?)
			`, runID, task, cr.Fingerprint, cr.Steps)
			if err != nil {
				return fmt.Errorf("write result: fingerprint %s: %w", task, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write result: commit: %w", err)
	}
	return nil
}
