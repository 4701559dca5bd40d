package keystore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/avetisyanz/dreambot/internal/logger"
)

// SQLiteStore is the keyed-store alternative to flat files for
// deployments that outgrow one file per chat. Same contract, same
// ordering guarantees.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteStore(dsn string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	log.WithField("dsn", dsn).Debug("Key database opened")

	return &SQLiteStore{db: db, logger: log}, nil
}

func (s *SQLiteStore) Get(chatID int64, kind Kind) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT token FROM api_keys
		WHERE chat_id = ? AND provider = ?
		ORDER BY position
	`, chatID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		keys = append(keys, token)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Put(chatID int64, kind Kind, keys []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM api_keys WHERE chat_id = ? AND provider = ?",
		chatID, string(kind),
	); err != nil {
		return err
	}

	for position, token := range keys {
		if _, err := tx.Exec(`
			INSERT INTO api_keys (chat_id, provider, position, token)
			VALUES (?, ?, ?, ?)
		`, chatID, string(kind), position, token); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(chatID int64, kind Kind) error {
	_, err := s.db.Exec(
		"DELETE FROM api_keys WHERE chat_id = ? AND provider = ?",
		chatID, string(kind),
	)
	return err
}

func (s *SQLiteStore) List(kind Kind) ([]int64, error) {
	rows, err := s.db.Query(
		"SELECT DISTINCT chat_id FROM api_keys WHERE provider = ? ORDER BY chat_id",
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, err
		}
		chats = append(chats, chatID)
	}
	return chats, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
