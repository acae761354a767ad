// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, e.g. reassigning items to a category that is missing.
var ErrConflict = errors.New("conflict")

// ErrTableMissing wraps MySQL error 1146.  It happens on installations where
// an optional feature (room service, guest messages) was never provisioned.
var ErrTableMissing = errors.New("table missing")

const (
	mysqlDuplicateEntry = 1062
	mysqlNoSuchTable    = 1146
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicate reports whether err is a unique key violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || mysqlCode(err) == mysqlDuplicateEntry
}

// IsMissingTable reports whether err comes from a query on a table that does
// not exist.
func IsMissingTable(err error) bool {
	return errors.Is(err, ErrTableMissing) || mysqlCode(err) == mysqlNoSuchTable
}

// classify maps driver errors onto the sentinels above and leaves every
// other error untouched.
func classify(err error) error {
	switch mysqlCode(err) {
	case mysqlDuplicateEntry:
		return errors.Join(ErrDuplicate, err)
	case mysqlNoSuchTable:
		return errors.Join(ErrTableMissing, err)
	}
	return err
}
