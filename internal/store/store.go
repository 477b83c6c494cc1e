// Package store persists scansion runs in a local SQLite database so a
// batch can be compared with earlier ones.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/cours-de-latin/scansion"
	applog "github.com/cours-de-latin/scansion/internal/log"
	"github.com/cours-de-latin/scansion/internal/version"

	// Pure-Go SQLite driver
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Store is a handle on the run database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Run summarizes one stored batch.
type Run struct {
	ID        string
	Source    string
	Version   string
	CreatedAt time.Time
	Lines     int
	// Scanned counts lines that scanned into six feet without violation.
	Scanned int
}

// LineRecord is one stored line of a run.
type LineRecord struct {
	RunID    string `json:"run_id"`
	Position int    `json:"position"`
	Number   int    `json:"number"`
	Raw      string `json:"line"`
	// Hash is the hex BLAKE3 digest of Raw.
	Hash      string   `json:"hash"`
	Feet      string   `json:"feet"`
	Stresses  string   `json:"stresses"`
	FootCount int      `json:"foot_count"`
	Issues    []string `json:"issues,omitempty"`
}

// LineHash returns the hex BLAKE3 digest identifying a raw line.
func LineHash(raw string) string {
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("store"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("store ready")
	return &Store{db: db, log: applog.WithComponent("store")}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			source     TEXT NOT NULL,
			version    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lines (
			run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			number     INTEGER NOT NULL,
			raw        TEXT NOT NULL,
			hash       TEXT NOT NULL,
			feet       TEXT NOT NULL,
			stresses   TEXT NOT NULL,
			foot_count INTEGER NOT NULL,
			scanned    INTEGER NOT NULL,
			issues     TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS lines_hash ON lines(hash);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	var cur string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema'`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES('schema', ?)`, fmt.Sprint(schemaVersion))
		if err != nil {
			return fmt.Errorf("seed schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case cur != fmt.Sprint(schemaVersion):
		return fmt.Errorf("store schema %s, want %d", cur, schemaVersion)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun stores a scanned batch in one transaction and returns its summary.
func (s *Store) SaveRun(ctx context.Context, source string, lines []*scansion.Line) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Source:    source,
		Version:   version.String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Lines:     len(lines),
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, source, version, created_at) VALUES(?, ?, ?, ?)`,
		run.ID, run.Source, run.Version, run.CreatedAt.Format(time.RFC3339)); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lines
		(run_id, position, number, raw, hash, feet, stresses, foot_count, scanned, issues)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare line insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range lines {
		issues := make([]string, len(l.Issues))
		for j, e := range l.Issues {
			issues[j] = e.Error()
		}
		scanned := 0
		if l.Scanned() {
			scanned = 1
			run.Scanned++
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, l.Number, l.Raw, LineHash(l.Raw),
			l.FootTypes(), l.Stresses(), l.Feet, scanned, strings.Join(issues, "\n")); err != nil {
			return Run{}, fmt.Errorf("insert line %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	s.log.Info("run saved", slog.String("run", run.ID), slog.Int("lines", run.Lines), slog.Int("scanned", run.Scanned))
	return run, nil
}

const runSelect = `SELECT r.id, r.source, r.version, r.created_at,
	COUNT(l.position), COALESCE(SUM(l.scanned), 0)
	FROM runs r LEFT JOIN lines l ON l.run_id = r.id`

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, runSelect+` GROUP BY r.id ORDER BY r.created_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run summary.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, runSelect+` WHERE r.id = ? GROUP BY r.id`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created string
	if err := sc.Scan(&r.ID, &r.Source, &r.Version, &created, &r.Lines, &r.Scanned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return r, fmt.Errorf("parse run time: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}

const lineSelect = `SELECT run_id, position, number, raw, hash, feet, stresses, foot_count, issues FROM lines`

// Lines returns the lines of a run in batch order.
func (s *Store) Lines(ctx context.Context, runID string) ([]LineRecord, error) {
	return s.queryLines(ctx, lineSelect+` WHERE run_id = ? ORDER BY position`, runID)
}

// History returns every stored scansion of raw, oldest run first, so a
// change in the rules shows up as a change in feet or stresses.
func (s *Store) History(ctx context.Context, raw string) ([]LineRecord, error) {
	return s.queryLines(ctx, `SELECT l.run_id, l.position, l.number, l.raw, l.hash, l.feet, l.stresses, l.foot_count, l.issues
		FROM lines l JOIN runs r ON r.id = l.run_id
		WHERE l.hash = ? ORDER BY r.created_at, r.rowid`, LineHash(raw))
}

func (s *Store) queryLines(ctx context.Context, q string, args ...any) ([]LineRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()
	var out []LineRecord
	for rows.Next() {
		var r LineRecord
		var issues string
		if err := rows.Scan(&r.RunID, &r.Position, &r.Number, &r.Raw, &r.Hash,
			&r.Feet, &r.Stresses, &r.FootCount, &issues); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if issues != "" {
			r.Issues = strings.Split(issues, "\n")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
