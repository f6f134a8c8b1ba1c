package origin

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed ledger_schema.sql
var ledgerSchemaSQL string

// ledgerSchemaVersion is bumped on incompatible schema changes. The ledger is a
// cache, so a mismatch is resolved by deleting the file and running a forced sync.
const ledgerSchemaVersion = 1

// ErrLedgerSchemaMismatch indicates sync.db was written by an incompatible version.
var ErrLedgerSchemaMismatch = errors.New("sync ledger schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry records what was last pushed for one key on one target.
type Entry struct {
	SHA256   string
	Size     int64
	SyncedAt time.Time
}

// Ledger remembers pushed object digests per target.
type Ledger struct {
	db   *sql.DB
	path string
}

// OpenLedger opens or creates the ledger database at path.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ledger := &Ledger{db: db, path: path}
	if err := ledger.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

// Path is the database file location.
func (l *Ledger) Path() string { return l.path }

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Ledger) initSchema(ctx context.Context) error {
	var tableExists int
	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return l.createSchema(ctx)
	}

	var version int
	if err := l.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != ledgerSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and run 'photoreel sync --force')",
			ErrLedgerSchemaMismatch, version, ledgerSchemaVersion, l.path)
	}
	return nil
}

func (l *Ledger) createSchema(ctx context.Context) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, ledgerSchemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", ledgerSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the entry for key on target.
func (l *Ledger) Lookup(ctx context.Context, target, key string) (Entry, bool, error) {
	var (
		entry    Entry
		syncedAt string
	)
	err := l.db.QueryRowContext(ctx,
		"SELECT sha256, size, synced_at FROM objects WHERE target = ? AND key = ?",
		target, key,
	).Scan(&entry.SHA256, &entry.Size, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	entry.SyncedAt, _ = time.Parse(time.RFC3339Nano, syncedAt)
	return entry, true, nil
}

// Record upserts the entry for key on target.
func (l *Ledger) Record(ctx context.Context, target, key string, entry Entry) error {
	if entry.SyncedAt.IsZero() {
		entry.SyncedAt = time.Now()
	}
	return l.execWithRetry(ctx, `
INSERT INTO objects (target, key, sha256, size, synced_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(target, key) DO UPDATE SET sha256 = excluded.sha256, size = excluded.size, synced_at = excluded.synced_at`,
		target, key, entry.SHA256, entry.Size, entry.SyncedAt.UTC().Format(time.RFC3339Nano))
}

// Forget removes the entry for key on target.
func (l *Ledger) Forget(ctx context.Context, target, key string) error {
	return l.execWithRetry(ctx, "DELETE FROM objects WHERE target = ? AND key = ?", target, key)
}

// Count returns the number of entries recorded for target.
func (l *Ledger) Count(ctx context.Context, target string) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM objects WHERE target = ?", target).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}

func (l *Ledger) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := l.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
