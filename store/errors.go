package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"

	"github.com/kweller/go-prodcat/catalog"
)

// SQLite primary result codes and extended constraint codes, as defined by
// the sqlite3 C API.
const (
	sqliteBusy                 = 5
	sqliteLocked               = 6
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// translate maps a driver-level error into the catalog taxonomy. It is the
// single translation point for store failures: everything the backends
// return passes through here exactly once, and unknown errors keep their
// original detail.
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePg(pgErr, err)
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return translateSQLite(sqErr, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}

	return err
}

func translatePg(pgErr *pgconn.PgError, err error) error {
	switch {
	case pgErr.Code == "23505": // unique_violation
		return fmt.Errorf("%w: %s", catalog.ErrConflict, pgErr.Detail)
	case strings.HasPrefix(pgErr.Code, "28"): // invalid_authorization_specification
		return fmt.Errorf("%w: %v", catalog.ErrUnauthorized, err)
	case pgErr.Code == "42501": // insufficient_privilege
		return fmt.Errorf("%w: %v", catalog.ErrForbidden, err)
	case pgErr.Code == "53300": // too_many_connections
		return catalog.NewRateLimitError(time.Second, err)
	case strings.HasPrefix(pgErr.Code, "08"), // connection_exception
		strings.HasPrefix(pgErr.Code, "53"), // insufficient_resources
		strings.HasPrefix(pgErr.Code, "57"): // operator_intervention / shutdown
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("store error (%s): %w", pgErr.Code, err)
}

func translateSQLite(sqErr *sqlite.Error, err error) error {
	switch sqErr.Code() {
	case sqliteConstraintUnique, sqliteConstraintPrimaryKey, sqliteConstraint:
		return fmt.Errorf("%w: %v", catalog.ErrConflict, err)
	case sqliteBusy, sqliteLocked:
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("store error (%d): %w", sqErr.Code(), err)
}
