package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool. SQLite serialises writers
// anyway, and a single connection keeps ":memory:" databases shared.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT NOT NULL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		voter_id TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT NOT NULL PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		party TEXT NOT NULL,
		photo_url TEXT NOT NULL,
		bio TEXT NOT NULL
	);

	-- One ballot per voter per election.
	CREATE TABLE IF NOT EXISTS ballots (
		id TEXT NOT NULL PRIMARY KEY,
		voter_id TEXT NOT NULL,
		election_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL REFERENCES candidates(id),
		tx_hash TEXT NOT NULL UNIQUE,
		cast_at TEXT NOT NULL,
		UNIQUE (voter_id, election_id)
	);

	CREATE TABLE IF NOT EXISTS directory_users (
		id TEXT NOT NULL PRIMARY KEY,
		position INTEGER NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		last_login TEXT NOT NULL,
		has_voted INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
