// Package store provides SQLite-backed snapshot storage with alert cooldown.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/setevik/dusnap/internal/snapshot"
)

// DB wraps an SQLite connection for snapshot storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Insert stores a new snapshot in the database.
func (d *DB) Insert(snap *snapshot.Snapshot) error {
	_, err := d.db.Exec(`
		INSERT INTO snapshots (id, instance_id, root, timestamp, total_bytes, file_count, dir_count, largest_path, largest_bytes, skipped_count, notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID,
		snap.InstanceID,
		snap.Root,
		snap.Timestamp.UTC().Format(time.RFC3339Nano),
		snap.TotalBytes,
		snap.FileCount,
		snap.DirCount,
		snap.LargestPath,
		snap.LargestBytes,
		snap.SkippedCount,
		false,
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// MarkNotified marks a snapshot as having triggered a limit alert.
func (d *DB) MarkNotified(id string) error {
	_, err := d.db.Exec(`UPDATE snapshots SET notified = TRUE WHERE id = ?`, id)
	return err
}

// QueryFilter controls which snapshots are returned by Query.
type QueryFilter struct {
	Root       string
	InstanceID string
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Query returns snapshots matching the filter, ordered by timestamp descending.
func (d *DB) Query(f QueryFilter) ([]*snapshot.Snapshot, error) {
	query := `SELECT id, instance_id, root, timestamp, total_bytes, file_count, dir_count, largest_path, largest_bytes, skipped_count
		FROM snapshots WHERE 1=1`
	var args []interface{}

	if f.Root != "" {
		query += " AND root = ?"
		args = append(args, f.Root)
	}
	if f.InstanceID != "" {
		query += " AND instance_id = ?"
		args = append(args, f.InstanceID)
	}
	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}

	query += " ORDER BY timestamp DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*snapshot.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Recent returns up to n most recent snapshots for the given root, newest
// first.
func (d *DB) Recent(root string, n int) ([]*snapshot.Snapshot, error) {
	return d.Query(QueryFilter{Root: root, Limit: n})
}

// Roots returns the distinct roots that have stored snapshots.
func (d *DB) Roots() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT root FROM snapshots ORDER BY root`)
	if err != nil {
		return nil, fmt.Errorf("querying roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("scanning root: %w", err)
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

// CheckCooldown reports whether a limit alert may fire for root, i.e. no
// snapshot for it has been notified within the cooldown window.
func (d *DB) CheckCooldown(root string, window time.Duration) (bool, error) {
	since := time.Now().Add(-window).UTC().Format(time.RFC3339Nano)

	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE root = ? AND notified = TRUE AND timestamp >= ?`,
		root, since).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking cooldown: %w", err)
	}

	slog.Debug("cooldown check",
		"root", root,
		"recent_alerts", count,
		"may_alert", count == 0,
	)
	return count == 0, nil
}

// Purge deletes snapshots older than the given retention duration.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	result, err := d.db.Exec(`DELETE FROM snapshots WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging old snapshots: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the total number of stored snapshots.
func (d *DB) Count() (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count)
	return count, err
}

func scanSnapshot(rows *sql.Rows) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var tsStr string
	var largestPath sql.NullString

	err := rows.Scan(
		&snap.ID,
		&snap.InstanceID,
		&snap.Root,
		&tsStr,
		&snap.TotalBytes,
		&snap.FileCount,
		&snap.DirCount,
		&largestPath,
		&snap.LargestBytes,
		&snap.SkippedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot row: %w", err)
	}

	snap.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
	snap.LargestPath = largestPath.String

	return &snap, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id            TEXT PRIMARY KEY,
			instance_id   TEXT NOT NULL,
			root          TEXT NOT NULL,
			timestamp     TEXT NOT NULL,
			total_bytes   INTEGER NOT NULL,
			file_count    INTEGER NOT NULL,
			dir_count     INTEGER NOT NULL,
			largest_path  TEXT,
			largest_bytes INTEGER NOT NULL DEFAULT 0,
			skipped_count INTEGER NOT NULL DEFAULT 0,
			notified      BOOLEAN DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_root_ts ON snapshots(root, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_instance_ts ON snapshots(instance_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("database schema up to date")
	return nil
}
