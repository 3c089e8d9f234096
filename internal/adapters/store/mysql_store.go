package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

const mysqlTimeFormat = "2006-01-02 15:04:05.000000"

// MySQLStore backs the SharedStore interfaces with MySQL for
// deployments where the producer and consumer processes share a
// database server rather than a filesystem.
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	maxAge      time.Duration
	stopCh      chan struct{}
}

// NewMySQLStore connects to the shared database and starts the
// background cleanup task.
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq, maxAge time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS share_payloads (
			id VARCHAR(64) PRIMARY KEY,
			text MEDIUMTEXT,
			created_at DATETIME(6),
			origin VARCHAR(32),
			INDEX idx_share_payloads_created_at (created_at)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create share_payloads table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trusted_contacts (
			number VARCHAR(32) PRIMARY KEY
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trusted_contacts table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			` + "`key`" + ` VARCHAR(64) PRIMARY KEY,
			value VARCHAR(255)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	s := &MySQLStore{
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

// Put inserts the payload under its id, last write wins.
func (s *MySQLStore) Put(ctx context.Context, payload *core.SharePayload) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO share_payloads (id, text, created_at, origin)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			text = VALUES(text),
			created_at = VALUES(created_at),
			origin = VALUES(origin)
	`, payload.ID, payload.Text, payload.CreatedAt.UTC().Format(mysqlTimeFormat), string(payload.Origin))

	if err != nil {
		return fmt.Errorf("failed to insert share payload: %w", err)
	}
	return nil
}

// Consume locks the row, deletes it, and commits. The row lock makes
// the read-check-delete sequence atomic against racing consumers; the
// loser of the race sees no row.
func (s *MySQLStore) Consume(ctx context.Context, id string, maxAge time.Duration) (*core.SharePayload, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var payload core.SharePayload
	var createdAt, origin string

	err = tx.QueryRowContext(ctx, `
		SELECT id, text, created_at, origin
		FROM share_payloads
		WHERE id = ?
		FOR UPDATE
	`, id).Scan(&payload.ID, &payload.Text, &createdAt, &origin)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrPayloadNotFound
		}
		return nil, fmt.Errorf("failed to query share payload: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM share_payloads WHERE id = ?
	`, id); err != nil {
		return nil, fmt.Errorf("failed to delete share payload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit consume: %w", err)
	}

	payload.CreatedAt, err = time.Parse(mysqlTimeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	payload.CreatedAt = payload.CreatedAt.UTC()
	payload.Origin = core.PayloadOrigin(origin)

	if time.Since(payload.CreatedAt) > maxAge {
		s.logger.Debug("Share payload expired", zap.String("payload_id", id))
		return nil, core.ErrPayloadNotFound
	}

	return &payload, nil
}

// CleanupExpired removes payloads older than maxAge.
func (s *MySQLStore) CleanupExpired(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).UTC().Format(mysqlTimeFormat)

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
func (s *MySQLStore) LoadTrusted(ctx context.Context) ([]string, error) {
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

// ReplaceTrusted swaps the cached trusted set in one transaction.
func (s *MySQLStore) ReplaceTrusted(ctx context.Context, numbers []string) error {
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
			INSERT INTO trusted_contacts (number) VALUES (?)
			ON DUPLICATE KEY UPDATE number = VALUES(number)
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

// FilterEnabled reports the stored filter confirmation flag.
func (s *MySQLStore) FilterEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE `key` = ?", filterEnabledKey).Scan(&value)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query settings: %w", err)
	}

	return value == "true", nil
}

// SetFilterEnabled records the filter confirmation flag.
func (s *MySQLStore) SetFilterEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (`+"`key`"+`, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`, filterEnabledKey, value)

	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// startCleanupTask periodically deletes orphaned payloads.
func (s *MySQLStore) startCleanupTask() {
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
func (s *MySQLStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
