package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

// SQLiteStore backs the SharedStore interfaces with a SQLite database
// in a storage path visible to both the extension processes and the
// main application. SQLite serializes writers per database, which is
// what makes Consume's single-statement read-and-delete atomic across
// processes.
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	maxAge      time.Duration
	stopCh      chan struct{}
}

// NewSQLiteStore opens (creating if needed) the shared database and
// starts the background cleanup task.
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq, maxAge time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS share_payloads (
			id TEXT PRIMARY KEY,
			text TEXT,
			created_at TEXT,
			origin TEXT
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create share_payloads table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_share_payloads_created_at ON share_payloads(created_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trusted_contacts (
			number TEXT PRIMARY KEY
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trusted_contacts table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		maxAge:      maxAge,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go s.startCleanupTask()
	}

	return s, nil
}

// Put inserts the payload under its id. INSERT OR REPLACE gives
// last-write-wins on the practically impossible id collision.
func (s *SQLiteStore) Put(ctx context.Context, payload *core.SharePayload) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO share_payloads (id, text, created_at, origin)
		VALUES (?, ?, ?, ?)
	`, payload.ID, payload.Text, payload.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload.Origin))

	if err != nil {
		return fmt.Errorf("failed to insert share payload: %w", err)
	}
	return nil
}

// Consume deletes the payload row and returns it in one statement, so
// two racing consumers cannot both succeed: the loser sees no row.
// Expired entries are likewise deleted and reported as not found.
func (s *SQLiteStore) Consume(ctx context.Context, id string, maxAge time.Duration) (*core.SharePayload, error) {
	var payload core.SharePayload
	var createdAt, origin string

	err := s.db.QueryRowContext(ctx, `
		DELETE FROM share_payloads
		WHERE id = ?
		RETURNING id, text, created_at, origin
	`, id).Scan(&payload.ID, &payload.Text, &createdAt, &origin)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrPayloadNotFound
		}
		return nil, fmt.Errorf("failed to consume share payload: %w", err)
	}

	payload.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	payload.Origin = core.PayloadOrigin(origin)

	if time.Since(payload.CreatedAt) > maxAge {
		s.logger.Debug("Share payload expired", zap.String("payload_id", id))
		return nil, core.ErrPayloadNotFound
	}

	return &payload, nil
}

// CleanupExpired removes payloads older than maxAge.
func (s *SQLiteStore) CleanupExpired(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339Nano)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM share_payloads
		WHERE created_at <= ?
	`, cutoff)

	if err != nil {
		return fmt.Errorf("failed to clean up expired payloads: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired share payloads", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// LoadTrusted returns all cached trusted numbers.
func (s *SQLiteStore) LoadTrusted(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number FROM trusted_contacts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trusted contacts: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan trusted contact: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trusted contacts: %w", err)
	}

	return numbers, nil
}

// ReplaceTrusted swaps the cached trusted set in one transaction so
// readers never observe a half-written sync.
func (s *SQLiteStore) ReplaceTrusted(ctx context.Context, numbers []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trusted_contacts`); err != nil {
		return fmt.Errorf("failed to clear trusted contacts: %w", err)
	}

	for _, n := range numbers {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO trusted_contacts (number) VALUES (?)
		`, n); err != nil {
			return fmt.Errorf("failed to insert trusted contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trusted contacts: %w", err)
	}

	s.logger.Debug("Replaced trusted contact set", zap.Int("count", len(numbers)))
	return nil
}

const filterEnabledKey = "filter_enabled"

// FilterEnabled reports the stored filter confirmation flag. A missing
// row means the user never confirmed filtering.
func (s *SQLiteStore) FilterEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, filterEnabledKey).Scan(&value)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query settings: %w", err)
	}

	return value == "true", nil
}

// SetFilterEnabled records the filter confirmation flag.
func (s *SQLiteStore) SetFilterEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)
	`, filterEnabledKey, value)

	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// startCleanupTask periodically deletes orphaned payloads so a user who
// shares text but never opens the app does not grow the store forever.
func (s *SQLiteStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.CleanupExpired(context.Background(), s.maxAge); err != nil {
				s.logger.Error("Failed to clean up share payloads", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database.
func (s *SQLiteStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
