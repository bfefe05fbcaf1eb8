package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/speesrl/n8nctl/internal/containerexec"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// psql exit codes: 1 is a SQL-level failure, 2 means the connection to the
// server could not be established.
const psqlExitConnectionFailed = 2

// PSQLStore implements Querier by running psql inside the database container.
// This matches deployments where Postgres is only reachable through the
// container runtime, not over TCP from the host.
type PSQLStore struct {
	runner    containerexec.Runner
	container string
	database  string
	user      string
}

var _ Querier = (*PSQLStore)(nil)

// NewPSQLStore constructs a container-backed store.
func NewPSQLStore(runner containerexec.Runner, container, database, user string) *PSQLStore {
	return &PSQLStore{runner: runner, container: container, database: database, user: user}
}

func (s *PSQLStore) run(ctx context.Context, sql string) (string, error) {
	stdout, exitCode, err := s.runner.Exec(ctx, s.container,
		"psql", "-U", s.user, "-d", s.database,
		"-v", "ON_ERROR_STOP=1", "-t", "-A", "-F", "|", "-c", sql)
	if err != nil {
		return "", n8nerrors.NewUnreachableError("postgres", err)
	}
	if exitCode == psqlExitConnectionFailed {
		return "", n8nerrors.NewUnreachableError("postgres", errors.New(strings.TrimSpace(stdout)))
	}
	if exitCode != 0 {
		return "", n8nerrors.NewExecError(s.container, exitCode, errors.New(strings.TrimSpace(stdout)))
	}
	return stdout, nil
}

// QueryValue returns the first column of the first row.
func (s *PSQLStore) QueryValue(ctx context.Context, sql string) (string, error) {
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
func (s *PSQLStore) QueryRow(ctx context.Context, sql string) ([]string, error) {
	output, err := s.run(ctx, sql)
	if err != nil {
		return nil, readFailure(sql, err)
	}

	lines := nonEmptyLines(output)
	if len(lines) == 0 {
		return nil, nil
	}
	return strings.Split(lines[0], "|"), nil
}

// Exec runs a mutation and parses the affected-row count from the psql
// command tag ("INSERT 0 1", "UPDATE 1"). A missing tag counts as zero rows.
func (s *PSQLStore) Exec(ctx context.Context, sql string) (int64, error) {
	output, err := s.run(ctx, sql)
	if err != nil {
		if n8nerrors.IsUnreachable(err) {
			return 0, err
		}
		return 0, n8nerrors.NewRejectedError("execute", "", err)
	}

	lines := nonEmptyLines(output)
	if len(lines) == 0 {
		return 0, nil
	}

	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) == 0 {
		return 0, nil
	}
	affected, parseErr := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if parseErr != nil {
		return 0, nil
	}
	return affected, nil
}

func readFailure(sql string, err error) error {
	if n8nerrors.IsUnreachable(err) {
		return err
	}
	return n8nerrors.NewReadFailedError("postgres", firstLine(sql), err)
}

func nonEmptyLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}

func firstLine(sql string) string {
	if idx := strings.IndexByte(sql, '\n'); idx >= 0 {
		sql = sql[:idx]
	}
	const max = 80
	if len(sql) > max {
		return sql[:max] + "..."
	}
	return sql
}
