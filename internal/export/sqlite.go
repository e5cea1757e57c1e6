// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/grant-matcher/internal/match"
)

// Archive persists batch runs to a SQLite database. It is write-only from
// the tool's point of view: runs are appended for later analysis with
// external tooling, never read back to answer queries.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates the archive database at path and ensures
// the schema exists.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			grant_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			grant_id TEXT NOT NULL,
			status TEXT NOT NULL,
			funder_id TEXT,
			funder_name TEXT,
			publication_count INTEGER NOT NULL,
			reason TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			outcome_id INTEGER NOT NULL REFERENCES outcomes(id),
			doi TEXT,
			title TEXT,
			authors TEXT,
			institutions TEXT,
			publication_year INTEGER,
			funder TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_outcome_id ON publications(outcome_id)`,
	}

	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun appends one batch run with its outcomes and publications in a
// single transaction, returning the new run's row ID.
func (a *Archive) SaveRun(ctx context.Context, result match.Result) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, grant_count) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339), len(result.Outcomes))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	for i, o := range result.Outcomes {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, position, grant_id, status, funder_id, funder_name, publication_count, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, o.GrantID, string(o.Status), o.FunderID, o.FunderName, len(o.Publications), o.Reason)
		if err != nil {
			return 0, fmt.Errorf("inserting outcome for %q: %w", o.GrantID, err)
		}
		outcomeID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading outcome ID: %w", err)
		}

		for _, p := range o.Publications {
			authors, err := json.Marshal(p.Authors)
			if err != nil {
				return 0, fmt.Errorf("marshaling authors: %w", err)
			}
			institutions, err := json.Marshal(p.Institutions)
			if err != nil {
				return 0, fmt.Errorf("marshaling institutions: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO publications (outcome_id, doi, title, authors, institutions, publication_year, funder)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				outcomeID, p.DOI, p.Title, string(authors), string(institutions), p.Year, p.Funder); err != nil {
				return 0, fmt.Errorf("inserting publication: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}
