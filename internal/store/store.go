package store

import (
	"context"
	"strconv"
	"strings"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// Querier is the narrow relational interface the reconciler reads and writes
// through. Query methods are strictly read-only; Exec wraps exactly one
// mutation and reports the number of affected rows.
type Querier interface {
	// QueryValue returns the first column of the first result row, or an
	// empty string when the query matches no rows.
	QueryValue(ctx context.Context, sql string) (string, error)

	// QueryRow returns the columns of the first result row, or nil when the
	// query matches no rows.
	QueryRow(ctx context.Context, sql string) ([]string, error)

	// Exec runs a mutation and returns the number of affected rows.
	Exec(ctx context.Context, sql string) (int64, error)
}

// QueryBool runs a query expected to yield exactly one boolean. An empty or
// undecodable result is a ReadFailedError, never a silent false: a store
// error must not masquerade as "does not exist".
func QueryBool(ctx context.Context, q Querier, sql string) (bool, error) {
	value, err := q.QueryValue(ctx, sql)
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(value) {
	case "t", "true":
		return true, nil
	case "f", "false":
		return false, nil
	case "":
		return false, n8nerrors.NewReadFailedError("query", "expected a boolean, got an empty result", nil)
	default:
		return false, n8nerrors.NewReadFailedError("query", "undecodable boolean "+strconv.Quote(value), nil)
	}
}

// QueryInt runs a query expected to yield exactly one integer, typically a
// COUNT. Same decoding policy as QueryBool.
func QueryInt(ctx context.Context, q Querier, sql string) (int64, error) {
	value, err := q.QueryValue(ctx, sql)
	if err != nil {
		return 0, err
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, n8nerrors.NewReadFailedError("query", "expected an integer, got an empty result", nil)
	}

	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, n8nerrors.NewReadFailedError("query", "undecodable integer "+strconv.Quote(value), err)
	}
	return parsed, nil
}

// QuoteLiteral renders a string as a single-quoted SQL literal.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// QuoteIdent renders an identifier as a double-quoted SQL name.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
