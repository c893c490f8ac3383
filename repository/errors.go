package repository

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	ErrDatabaseOpenFailed  = errors.New("database open failed")
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrInvalidData marks a malformed row read back from storage; a
	// programmer error, reported instead of crashing the reader.
	ErrInvalidData = errors.New("invalid data in storage")
)

// translate maps driver-level errors onto the repository taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return errors.Join(ErrConstraintViolation, err)
	}
	return err
}
