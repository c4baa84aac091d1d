package db

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the PostgreSQL connection pool. It is constructed once at process
// start and handed to whoever needs it, there is no package-level instance.
type DB struct {
	conn *pgxpool.Pool
}

func (d *DB) Close() error {
	d.conn.Close()
	return nil
}

func (d *DB) GetPool() *pgxpool.Pool {
	return d.conn
}

// poolConfig builds the pool configuration: bounded connections and the
// shopspring decimal codec, which activity points rely on for numeric
// columns to scan into decimal.Decimal in binary format.
func poolConfig(dsn string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 20
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return config, nil
}

func NewPSQL(ctx context.Context, dsn string) (*DB, error) {
	config, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &DB{conn}, nil
}

// Get scans a single row into dest. Callers are expected to check for
// pgx.ErrNoRows themselves, just like with a bare QueryRow.
func Get[T any](conn *pgxpool.Pool, ctx context.Context, dest *T, query string, args ...any) error {
	rows, _ := conn.Query(ctx, query, args...)
	val, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return err
	}
	*dest = val
	return nil
}

// Select scans all rows into dest, leaving it empty (not nil) on no rows.
func Select[T any](conn *pgxpool.Pool, ctx context.Context, dest *[]*T, query string, args ...any) error {
	rows, _ := conn.Query(ctx, query, args...)
	vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return err
	}
	*dest = vals
	return nil
}

func FormatLimitOffset(limit int, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}

	if limit > 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}

	if offset > 0 {
		return fmt.Sprintf("OFFSET %d", offset)
	}

	return ""
}

func mapper[T1 any, T2 any](lst []*T1, f func(*T1) *T2) []*T2 {
	if len(lst) == 0 {
		return []*T2{}
	}
	rez := make([]*T2, len(lst))
	for i := range rez {
		rez[i] = f(lst[i])
	}
	return rez
}
