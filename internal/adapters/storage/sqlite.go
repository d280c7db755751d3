package storage

import (
	"context"
	"database/sql"
	"fmt"

	"sobot/internal/core/port"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE TABLE IF NOT EXISTS admins (
	room     TEXT    NOT NULL,
	user_id  INTEGER NOT NULL,
	is_owner INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (room, user_id)
);
`

// SQLite is the storage collaborator. KV() and Admins() expose the key-value
// and admin-list ports over the same database handle.
type SQLite struct {
	db *sql.DB
}

func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Info().Str("path", path).Msg("storage opened")

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) KV() *KV {
	return &KV{db: s.db}
}

func (s *SQLite) Admins() *Admins {
	return &Admins{db: s.db}
}

type KV struct {
	db *sql.DB
}

func (s *KV) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`, namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get: %w", err)
	}

	return value, true, nil
}

func (s *KV) Set(ctx context.Context, namespace, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value
	`, namespace, key, value)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}

	return nil
}

func (s *KV) Remove(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("kv remove: %w", err)
	}

	return nil
}

type Admins struct {
	db *sql.DB
}

func (s *Admins) GetAll(ctx context.Context, room string) (*port.AdminList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, is_owner FROM admins WHERE room = ? ORDER BY user_id`, room)
	if err != nil {
		return nil, fmt.Errorf("admins get: %w", err)
	}
	defer rows.Close()

	list := &port.AdminList{}
	for rows.Next() {
		var userID int64
		var isOwner bool
		if err := rows.Scan(&userID, &isOwner); err != nil {
			return nil, fmt.Errorf("admins scan: %w", err)
		}

		if isOwner {
			list.Owners = append(list.Owners, userID)
		} else {
			list.Admins = append(list.Admins, userID)
		}
	}

	return list, rows.Err()
}

func (s *Admins) Add(ctx context.Context, room string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (room, user_id, is_owner) VALUES (?, ?, 0)`, room, userID)
	if err != nil {
		return fmt.Errorf("admins add: %w", err)
	}

	return nil
}

// AddOwner records a room owner. Owners have implicit admin rights and are
// not removable through Remove.
func (s *Admins) AddOwner(ctx context.Context, room string, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (room, user_id, is_owner) VALUES (?, ?, 1)
		ON CONFLICT (room, user_id) DO UPDATE SET is_owner = 1
	`, room, userID)
	if err != nil {
		return fmt.Errorf("admins add owner: %w", err)
	}

	return nil
}

func (s *Admins) Remove(ctx context.Context, room string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM admins WHERE room = ? AND user_id = ? AND is_owner = 0`, room, userID)
	if err != nil {
		return fmt.Errorf("admins remove: %w", err)
	}

	return nil
}

func (s *Admins) IsAdmin(ctx context.Context, room string, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE room = ? AND user_id = ?`, room, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("admins check: %w", err)
	}

	return count > 0, nil
}
