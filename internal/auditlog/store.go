// Package auditlog keeps a per-process record of dispatched calls and
// mode transitions in SQLite. The default database is in-memory, so the
// log lives exactly as long as the session; pass a data dir to keep it
// on disk while debugging.
package auditlog

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/universa-labs/universa-go/internal/dispatch"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database of call and transition records.
type Store struct {
	db *sql.DB
}

// CallRecord is one dispatched call.
type CallRecord struct {
	TS       time.Time
	Endpoint string
	Method   string
	Mode     string
	Outcome  string
	Duration time.Duration
}

// TransitionRecord is one mode change.
type TransitionRecord struct {
	TS     time.Time
	From   string
	To     string
	Reason string
}

// Open opens (or creates) the audit database. An empty dataDir (or
// ":memory:") selects an in-memory database scoped to the process.
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" || dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "universa-audit.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection: keeps :memory: a single database and avoids
	// "database is locked" errors on files.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCall implements dispatch.Auditor. Failures are logged, not
// returned: auditing must never fail a dispatched call.
func (s *Store) RecordCall(endpoint, method string, mode dispatch.Mode, outcome string, elapsed time.Duration) {
	_, err := s.db.Exec(
		`INSERT INTO calls (ts, endpoint, method, mode, outcome, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), endpoint, method, mode.String(), outcome, elapsed.Milliseconds(),
	)
	if err != nil {
		slog.Debug("audit: recording call failed", "error", err)
	}
}

// RecordTransition implements dispatch.Auditor.
func (s *Store) RecordTransition(from, to dispatch.Mode, reason string) {
	_, err := s.db.Exec(
		`INSERT INTO transitions (ts, from_mode, to_mode, reason) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), from.String(), to.String(), reason,
	)
	if err != nil {
		slog.Debug("audit: recording transition failed", "error", err)
	}
}

// RecentCalls returns up to limit calls, newest first.
func (s *Store) RecentCalls(limit int) ([]CallRecord, error) {
	rows, err := s.db.Query(
		`SELECT ts, endpoint, method, mode, outcome, duration_ms FROM calls ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying calls: %w", err)
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		var r CallRecord
		var ms int64
		if err := rows.Scan(&r.TS, &r.Endpoint, &r.Method, &r.Mode, &r.Outcome, &ms); err != nil {
			return nil, fmt.Errorf("scanning call: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Transitions returns up to limit mode transitions, newest first.
func (s *Store) Transitions(limit int) ([]TransitionRecord, error) {
	rows, err := s.db.Query(
		`SELECT ts, from_mode, to_mode, reason FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionRecord
	for rows.Next() {
		var r TransitionRecord
		if err := rows.Scan(&r.TS, &r.From, &r.To, &r.Reason); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// migrate applies embedded migration files that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// parseMigrationVersion extracts the numeric prefix of "0001_init.sql".
func parseMigrationVersion(name string) (int, error) {
	base := strings.TrimSuffix(name, ".sql")
	idx := strings.Index(base, "_")
	if idx <= 0 {
		return 0, fmt.Errorf("migration %q has no numeric prefix", name)
	}
	v, err := strconv.Atoi(base[:idx])
	if err != nil {
		return 0, fmt.Errorf("migration %q has invalid version: %w", name, err)
	}
	return v, nil
}
