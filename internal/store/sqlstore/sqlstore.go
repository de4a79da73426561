// Package sqlstore keeps tasks in a SQL database through sqlx.
// MySQL and SQLite are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"todo/internal/service"
)

// Supported driver names.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// seq only orders rows; ids are UUIDs assigned on insert.
var schemas = map[string]string{
	DriverMySQL: `CREATE TABLE IF NOT EXISTS tasks (
    seq BIGINT PRIMARY KEY AUTO_INCREMENT,
    id VARCHAR(36) NOT NULL UNIQUE,
    body TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE
)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS tasks (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    body TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT 0
)`,
}

type taskRow struct {
	ID        string `db:"id"`
	Body      string `db:"body"`
	Completed bool   `db:"completed"`
}

func (r taskRow) task() service.Task {
	return service.Task{ID: r.ID, Text: r.Body, Completed: r.Completed}
}

// Store is a task store backed by a SQL database.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database, pings it and creates the tasks table
// if it does not exist.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connecting: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: migrating: %w", err)
	}
	return &Store{db: db}, nil
}

// ListTasks implements service.Service.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, body, completed FROM tasks ORDER BY seq`); err != nil {
		return nil, err
	}
	out := make([]service.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.task())
	}
	return out, nil
}

// CreateTask implements service.Service.
func (s *Store) CreateTask(ctx context.Context, text string) (service.Task, error) {
	row := taskRow{ID: uuid.NewString(), Body: text}
	if _, err := s.db.NamedExecContext(ctx,
		`INSERT INTO tasks (id, body, completed) VALUES (:id, :body, :completed)`, row); err != nil {
		return service.Task{}, err
	}
	return row.task(), nil
}

// UpdateTask implements service.Service.
func (s *Store) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	var sets []string
	var args []any
	if patch.Text != nil {
		sets = append(sets, "body = ?")
		args = append(args, *patch.Text)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *patch.Completed)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return service.Task{}, err
	}
	defer tx.Rollback()

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return service.Task{}, err
		}
	}

	// MySQL reports unchanged rows as unaffected, so existence is
	// checked by reading the row back.
	var row taskRow
	if err := tx.GetContext(ctx, &row, `SELECT id, body, completed FROM tasks WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return service.Task{}, service.ErrNotFound
		}
		return service.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return service.Task{}, err
	}
	return row.task(), nil
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
