package db

import (
	"context"
	"errors"

	"github.com/codebench-edu/codebench"
	"github.com/jackc/pgx/v5"
)

// IOTests returns the activity's IO test cases in id order. The order is
// load-bearing: execution results come back as a positionally-aligned list.
func (s *DB) IOTests(ctx context.Context, activityID int) ([]*codebench.IOTest, error) {
	var tests []*codebench.IOTest
	err := Select(s.conn, ctx, &tests, "SELECT * FROM io_tests WHERE activity_id = $1 ORDER BY id ASC", activityID)
	return tests, err
}

func (s *DB) IOTest(ctx context.Context, id int) (*codebench.IOTest, error) {
	var test codebench.IOTest
	err := Get(s.conn, ctx, &test, "SELECT * FROM io_tests WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &test, err
}

func (s *DB) CreateIOTest(ctx context.Context, test *codebench.IOTest) error {
	if test.ActivityID == 0 || test.Name == "" {
		return codebench.ErrMissingRequired
	}

	var id int
	err := s.conn.QueryRow(ctx, "INSERT INTO io_tests (activity_id, name, input, output) VALUES ($1, $2, $3, $4) RETURNING id", test.ActivityID, test.Name, test.Input, test.Output).Scan(&id)
	if err == nil {
		test.ID = id
	}
	return err
}

func (s *DB) UpdateIOTest(ctx context.Context, id int, upd codebench.IOTestUpdate) error {
	ub := newUpdateBuilder()
	if v := upd.Name; v != nil {
		ub.AddUpdate("name = %s", v)
	}
	if v := upd.Input; v != nil {
		ub.AddUpdate("input = %s", v)
	}
	if v := upd.Output; v != nil {
		ub.AddUpdate("output = %s", v)
	}
	if ub.CheckUpdates() != nil {
		return ub.CheckUpdates()
	}
	fb := ub.MakeFilter()
	fb.AddConstraint("id = %s", id)

	_, err := s.conn.Exec(ctx, "UPDATE io_tests SET "+fb.WithUpdate(), fb.Args()...)
	return err
}

func (s *DB) DeleteIOTest(ctx context.Context, id int) error {
	_, err := s.conn.Exec(ctx, "DELETE FROM io_tests WHERE id = $1", id)
	return err
}

// CloneIOTest copies a test definition under another activity, returning the
// new test's id. The copy lands at the end of the target's ordering.
func (s *DB) CloneIOTest(ctx context.Context, id int, targetActivityID int) (int, error) {
	var newID int
	err := s.conn.QueryRow(ctx, "INSERT INTO io_tests (activity_id, name, input, output) SELECT $2, name, input, output FROM io_tests WHERE id = $1 RETURNING id", id, targetActivityID).Scan(&newID)
	if errors.Is(err, pgx.ErrNoRows) {
		return -1, codebench.ErrNotFound
	}
	return newID, err
}
