package db

import (
	"context"
	"errors"

	"github.com/codebench-edu/codebench"
	"github.com/jackc/pgx/v5"
)

// Execution logs are append-only: there is deliberately no update path here.

func (s *DB) CreateExecutionLog(ctx context.Context, log *codebench.ExecutionLog) error {
	if log.SubmissionID <= 0 {
		return codebench.ErrMissingRequired
	}
	var id int
	err := s.conn.QueryRow(ctx,
		"INSERT INTO execution_logs (submission_id, success, exit_message, stdout, stderr) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		log.SubmissionID, log.Success, log.ExitMessage, log.Stdout, log.Stderr).Scan(&id)
	if err == nil {
		log.ID = id
	}
	return err
}

func (s *DB) ExecutionLog(ctx context.Context, id int) (*codebench.ExecutionLog, error) {
	var log codebench.ExecutionLog
	err := Get(s.conn, ctx, &log, "SELECT * FROM execution_logs WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &log, err
}

func (s *DB) ExecutionLogsBySubmission(ctx context.Context, subID int) ([]*codebench.ExecutionLog, error) {
	var logs []*codebench.ExecutionLog
	err := Select(s.conn, ctx, &logs, "SELECT * FROM execution_logs WHERE submission_id = $1 ORDER BY id ASC", subID)
	return logs, err
}

// CreateIOTestRuns persists the runs in slice order inside one transaction,
// so id order on read matches dispatch order.
func (s *DB) CreateIOTestRuns(ctx context.Context, logID int, runs []*codebench.IOTestRun) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, run := range runs {
		if err := tx.QueryRow(ctx,
			"INSERT INTO io_test_runs (log_id, name, input, expected, output) VALUES ($1, $2, $3, $4, $5) RETURNING id",
			logID, run.Name, run.Input, run.Expected, run.Output).Scan(&run.ID); err != nil {
			return err
		}
		run.LogID = logID
	}
	return tx.Commit(ctx)
}

func (s *DB) CreateUnitTestRuns(ctx context.Context, logID int, runs []*codebench.UnitTestRun) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, run := range runs {
		if err := tx.QueryRow(ctx,
			"INSERT INTO unit_test_runs (log_id, name, passed, message) VALUES ($1, $2, $3, $4) RETURNING id",
			logID, run.Name, run.Passed, run.Message).Scan(&run.ID); err != nil {
			return err
		}
		run.LogID = logID
	}
	return tx.Commit(ctx)
}

func (s *DB) IOTestRuns(ctx context.Context, logID int) ([]*codebench.IOTestRun, error) {
	var runs []*codebench.IOTestRun
	err := Select(s.conn, ctx, &runs, "SELECT * FROM io_test_runs WHERE log_id = $1 ORDER BY id ASC", logID)
	return runs, err
}

func (s *DB) UnitTestRuns(ctx context.Context, logID int) ([]*codebench.UnitTestRun, error) {
	var runs []*codebench.UnitTestRun
	err := Select(s.conn, ctx, &runs, "SELECT * FROM unit_test_runs WHERE log_id = $1 ORDER BY id ASC", logID)
	return runs, err
}
