package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/task"
)

const engineName = "warehouse"

// Execer is the subset of *sql.DB the store needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store issues DDL and DML against one warehouse connection.
type Store struct {
	db     Execer
	closer func() error
}

// NewStore wraps an existing connection.
func NewStore(db Execer) *Store {
	return &Store{db: db}
}

// Open connects to the warehouse described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, task.Execution(engineName, "ping", err)
	}

	return &Store{db: db, closer: db.Close}, nil
}

// Close releases the underlying connection pool, if the store owns one.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// EnsureTable creates t if it does not exist. An existing table is left as is.
func (s *Store) EnsureTable(ctx context.Context, t Table) error {
	logger := ctxlog.FromContext(ctx)
	stmt, err := t.CreateTableSQL()
	if err != nil {
		return err
	}

	logger.Debug("Executing DDL.", "table", t.Name, "sql", stmt)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return task.Execution(engineName, fmt.Sprintf("create table %s", t.Name), err)
	}
	logger.Info("Table ensured.", "table", t.Name)
	return nil
}

// DeletePartition removes every row of t whose partition column equals key.
// Zero matching rows is not an error.
func (s *Store) DeletePartition(ctx context.Context, t Table, key string) (int64, error) {
	logger := ctxlog.FromContext(ctx)
	stmt, err := t.DeletePartitionSQL()
	if err != nil {
		return 0, err
	}

	logger.Debug("Executing DML.", "table", t.Name, "sql", stmt, "partition", key)
	res, err := s.db.ExecContext(ctx, stmt, key)
	if err != nil {
		return 0, task.Execution(engineName, fmt.Sprintf("delete partition %s", key), err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report counts; the delete itself succeeded.
		logger.Warn("Could not read affected row count.", "error", err)
		return 0, nil
	}
	logger.Info("Partition cleared.", "table", t.Name, "partition", key, "rows_deleted", rows)
	return rows, nil
}
