package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rsvp-collector/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS rsvp(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT,
		name TEXT,
		email TEXT,
		attend TEXT,
		msg TEXT
	)`

type DB struct {
	Bun *bun.DB
	// Now stamps created_at on insert. Defaults to UTC wall clock.
	Now func() time.Time
}

// Open connects to the sqlite file at path. Use ":memory:" with
// maxOpenConns=1 for a throwaway store.
func Open(path string, maxOpenConns int) (*DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if maxOpenConns > 0 {
		sqldb.SetMaxOpenConns(maxOpenConns)
	}
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to sqlite %s: %w", path, err)
	}
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// New wraps an existing bun handle.
func New(bunDB *bun.DB) *DB {
	return &DB{
		Bun: bunDB,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

func (d *DB) Close() error {
	return d.Bun.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Bun.PingContext(ctx)
}

// InitSchema creates the rsvp table if it does not exist yet.
func (d *DB) InitSchema(ctx context.Context) error {
	if _, err := d.Bun.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create rsvp table: %w", err)
	}
	return nil
}

// withConn runs fn on a dedicated pooled connection and always releases it.
func (d *DB) withConn(ctx context.Context, fn func(conn bun.Conn) error) error {
	conn, err := d.Bun.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// Insert stores a new response and returns its id.
func (d *DB) Insert(ctx context.Context, name, email, attend string, msg *string) (int64, error) {
	row := models.GuestResponse{
		CreatedAt: d.Now(),
		Name:      name,
		Email:     email,
		Attend:    attend,
		Msg:       msg,
	}
	err := d.withConn(ctx, func(conn bun.Conn) error {
		_, err := conn.NewInsert().
			Model(&row).
			Returning("id").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert rsvp: %w", err)
	}
	return row.ID, nil
}

// ListAll returns every response, newest first.
func (d *DB) ListAll(ctx context.Context) ([]models.GuestResponse, error) {
	rows := make([]models.GuestResponse, 0)
	err := d.withConn(ctx, func(conn bun.Conn) error {
		return conn.NewSelect().
			Model(&rows).
			Order(models.SortCreatedAtDesc.OrderTerms()...).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rows, nil
}

// ExportAll returns every response in insertion order.
func (d *DB) ExportAll(ctx context.Context) ([]models.GuestResponse, error) {
	rows := make([]models.GuestResponse, 0)
	err := d.withConn(ctx, func(conn bun.Conn) error {
		return conn.NewSelect().
			Model(&rows).
			Order("id ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export rsvps: %w", err)
	}
	return rows, nil
}

// Query returns one page of responses matching filter plus the total
// number of matches. Count and page are separate statements over the same
// filter, run on the same connection.
func (d *DB) Query(ctx context.Context, filter models.Filter, sort models.SortKey, limit, offset int) ([]models.GuestResponse, int, error) {
	rows := make([]models.GuestResponse, 0)
	var total int
	err := d.withConn(ctx, func(conn bun.Conn) error {
		var err error
		total, err = applyFilter(conn.NewSelect().Model((*models.GuestResponse)(nil)), filter).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}

		err = applyFilter(conn.NewSelect().Model(&rows), filter).
			Order(sort.OrderTerms()...).
			Limit(limit).
			Offset(offset).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query rsvps: %w", err)
	}
	return rows, total, nil
}

// applyFilter adds the search and attendance predicates. All user input
// travels as bound parameters.
func applyFilter(q *bun.SelectQuery, filter models.Filter) *bun.SelectQuery {
	if filter.Search != "" {
		s := filter.Search
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("instr(name, ?) > 0", s).
				WhereOr("instr(email, ?) > 0", s).
				WhereOr("instr(msg, ?) > 0", s)
		})
	}
	if attend := models.ParseAttend(filter.Attend); attend != "" {
		q = q.Where("attend = ?", attend)
	}
	return q
}
