// ledger.go — sqlite-backed running-balance side table.
//
// This is not the double-entry ledger itself (that accounting semantics
// question is explicitly out of scope, spec §1). It is a small piece of
// state the placeholder validator needs to be able to report a running
// balance across restarts — the consumer's read offset into the log file
// remains non-durable, per spec's Non-goals; this only persists the
// validator's own derived totals.

package validator

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger wraps a single-row sqlite table holding the validator's running
// debit/credit totals.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if necessary) the sqlite database at path
// and ensures the running_totals table exists.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("validator: open ledger: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS running_totals (
		id INTEGER PRIMARY KEY CHECK (id = 0),
		debit_total INTEGER NOT NULL,
		credit_total INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("validator: create ledger table: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Load returns the persisted running totals, or (0, 0, nil) if nothing
// has been persisted yet.
func (l *Ledger) Load() (debit, credit int64, err error) {
	row := l.db.QueryRow(`SELECT debit_total, credit_total FROM running_totals WHERE id = 0`)
	err = row.Scan(&debit, &credit)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	return debit, credit, err
}

// Persist upserts the running totals.
func (l *Ledger) Persist(debit, credit int64) error {
	const stmt = `INSERT INTO running_totals (id, debit_total, credit_total) VALUES (0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET debit_total = excluded.debit_total, credit_total = excluded.credit_total`
	_, err := l.db.Exec(stmt, debit, credit)
	return err
}

// Close closes the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
