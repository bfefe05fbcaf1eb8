package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// PgxStore implements Querier over a direct TCP connection, for deployments
// that expose Postgres instead of requiring container exec.
type PgxStore struct {
	pool *pgxpool.Pool
}

var _ Querier = (*PgxStore)(nil)

// NewPgxStore opens a connection pool for the given DSN.
func NewPgxStore(ctx context.Context, dsn string) (*PgxStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, n8nerrors.NewUnreachableError("postgres", err)
	}
	return &PgxStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *PgxStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// QueryValue returns the first column of the first row.
func (s *PgxStore) QueryValue(ctx context.Context, sql string) (string, error) {
	row, err := s.QueryRow(ctx, sql)
	if err != nil {
		return "", err
	}
	if len(row) == 0 {
		return "", nil
	}
	return row[0], nil
}

// QueryRow returns the columns of the first row, nil when there is none.
// Values are rendered in Postgres text form so both Querier implementations
// decode identically ("t"/"f" booleans, empty string for NULL).
func (s *PgxStore) QueryRow(ctx context.Context, sql string) ([]string, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, n8nerrors.NewReadFailedError("postgres", firstLine(sql), err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, n8nerrors.NewReadFailedError("postgres", firstLine(sql), err)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, n8nerrors.NewReadFailedError("postgres", firstLine(sql), err)
	}

	row := make([]string, len(values))
	for i, value := range values {
		row[i] = renderValue(value)
	}
	return row, nil
}

// Exec runs a mutation and returns the affected-row count from the command tag.
func (s *PgxStore) Exec(ctx context.Context, sql string) (int64, error) {
	tag, err := s.pool.Exec(ctx, sql)
	if err != nil {
		return 0, n8nerrors.NewRejectedError("execute", firstLine(sql), err)
	}
	return tag.RowsAffected(), nil
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "t"
		}
		return "f"
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
