package commands

import (
	"database/sql"
	"log/slog"

	"github.com/dotcommander/skillforge/internal/output"
	"github.com/dotcommander/skillforge/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func withDB(fn func(db *DB) error) error {
	db, err := store.InitDB()
	if err != nil {
		return cmdErr(err)
	}
	defer func() { _ = db.Close() }()

	if err := fn(db); err != nil {
		return cmdErr(err)
	}
	return nil
}

// withDBSilent runs fn against the database, logging failures instead of
// returning them. Used by hook paths where nothing may propagate.
func withDBSilent(fn func(db *DB) error) {
	db, err := store.InitDB()
	if err != nil {
		slog.Default().Warn("open run-history database failed", "error", err)
		return
	}
	defer func() { _ = db.Close() }()

	if err := fn(db); err != nil {
		slog.Default().Warn("run-history operation failed", "error", err)
	}
}

func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	_ = output.PrintError(err)
	return printedError{err: err}
}
