package database

import (
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	// ErrConfiguration reports unreadable or incomplete query definitions.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnection reports a connection that could not be acquired from the pool.
	ErrConnection = errors.New("connection error")
	// ErrConstraintViolation reports a statement rejected by a uniqueness constraint.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrQueryExecution reports any other statement failure.
	ErrQueryExecution = errors.New("query execution error")
)

// Error carries the kind of a storage failure together with its cause.
// errors.Is matches both the kind sentinel and the underlying driver error.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify maps a driver error returned while executing a statement onto the
// error taxonomy. A nil err yields nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := ErrQueryExecution

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			kind = ErrConstraintViolation
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		kind = ErrConstraintViolation
	}

	return &Error{Kind: kind, Op: op, Err: err}
}
