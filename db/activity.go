package db

import (
	"context"
	"errors"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Activities are authored in the courses service; this core only reads them.

type dbActivity struct {
	ID        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Name             string          `db:"name"`
	Points           decimal.Decimal `db:"points"`
	Language         string          `db:"language"`
	StartingFilesKey string          `db:"starting_files_key"`
}

func (s *DB) Activity(ctx context.Context, id int) (*codebench.Activity, error) {
	var act dbActivity
	err := Get(s.conn, ctx, &act, "SELECT * FROM activities WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s.internalToActivity(&act), err
}

func (s *DB) Activities(ctx context.Context, ids []int) ([]*codebench.Activity, error) {
	if len(ids) == 0 {
		return []*codebench.Activity{}, nil
	}
	var acts []*dbActivity
	err := Select(s.conn, ctx, &acts, "SELECT * FROM activities WHERE id = ANY($1) ORDER BY id ASC", ids)
	if err != nil {
		return []*codebench.Activity{}, err
	}
	return mapper(acts, s.internalToActivity), nil
}

func (s *DB) internalToActivity(act *dbActivity) *codebench.Activity {
	if act == nil {
		return nil
	}
	return &codebench.Activity{
		ID:               act.ID,
		CreatedAt:        act.CreatedAt,
		Name:             act.Name,
		Points:           act.Points,
		Language:         act.Language,
		StartingFilesKey: act.StartingFilesKey,
	}
}
