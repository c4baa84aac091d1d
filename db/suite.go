package db

import (
	"context"
	"errors"

	"github.com/codebench-edu/codebench"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation on unit_test_suites(activity_id)
const pgUniqueViolation = "23505"

func (s *DB) UnitTestSuite(ctx context.Context, activityID int) (*codebench.UnitTestSuite, error) {
	var suite codebench.UnitTestSuite
	err := Get(s.conn, ctx, &suite, "SELECT * FROM unit_test_suites WHERE activity_id = $1 LIMIT 1", activityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &suite, err
}

// CreateUnitTestSuite persists the suite row. The table carries a uniqueness
// constraint on activity_id, so a second suite for the same activity comes
// back as ErrSuiteExists with nothing mutated.
func (s *DB) CreateUnitTestSuite(ctx context.Context, activityID int, archiveKey string) (*codebench.UnitTestSuite, error) {
	if activityID <= 0 || archiveKey == "" {
		return nil, codebench.ErrMissingRequired
	}
	var id int
	err := s.conn.QueryRow(ctx, "INSERT INTO unit_test_suites (activity_id, archive_key) VALUES ($1, $2) RETURNING id", activityID, archiveKey).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, codebench.ErrSuiteExists
		}
		return nil, err
	}
	return s.UnitTestSuite(ctx, activityID)
}

func (s *DB) UpdateUnitTestSuiteArchive(ctx context.Context, id int, archiveKey string) error {
	if archiveKey == "" {
		return codebench.ErrMissingRequired
	}
	tag, err := s.conn.Exec(ctx, "UPDATE unit_test_suites SET archive_key = $2, updated_at = NOW() WHERE id = $1", id, archiveKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return codebench.ErrNotFound
	}
	return nil
}

func (s *DB) DeleteUnitTestSuite(ctx context.Context, id int) error {
	_, err := s.conn.Exec(ctx, "DELETE FROM unit_test_suites WHERE id = $1", id)
	return err
}
