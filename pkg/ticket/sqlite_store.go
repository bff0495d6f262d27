package ticket

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oakrp/warden/pkg/entities"
	_ "modernc.org/sqlite"
)

// sqliteSchema holds one row per open ticket. Closed tickets are deleted, not
// archived.
const sqliteSchema = `CREATE TABLE IF NOT EXISTS tickets (
	channel_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	category TEXT NOT NULL,
	opener_id TEXT NOT NULL,
	opener_name TEXT NOT NULL,
	opened_at TEXT NOT NULL,
	claimed_by TEXT NOT NULL DEFAULT '',
	claimed_by_name TEXT NOT NULL DEFAULT '',
	added_members TEXT NOT NULL DEFAULT '[]',
	message_id TEXT NOT NULL DEFAULT ''
);`

// SqliteStore persists ticket records in a local sqlite file. No size cap, no
// external database server.
type SqliteStore struct {
	db    *sql.DB
	locks *keyedMutex
}

// NewSqliteStore opens (or creates) the sqlite database at the given path and
// ensures the schema exists.
func NewSqliteStore(dataSourceName string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("error creating tickets table: %w", err)
	}

	return &SqliteStore{
		db:    db,
		locks: newKeyedMutex(),
	}, nil
}

func (s *SqliteStore) Create(ctx context.Context, t *entities.Ticket) error {
	unlock := s.locks.Lock(t.ChannelID)
	defer unlock()

	observe := observeStore("sqlite", "create")
	defer observe()

	if _, err := s.get(ctx, t.ChannelID); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	added, err := json.Marshal(t.AddedMembers)
	if err != nil {
		return fmt.Errorf("error encoding added members: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tickets (channel_id, id, category, opener_id, opener_name, opened_at, claimed_by, claimed_by_name, added_members, message_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ChannelID, t.ID, string(t.Category), t.OpenerID, t.OpenerName, t.OpenedAt,
		t.ClaimedBy, t.ClaimedByName, string(added), t.MessageID,
	)
	if err != nil {
		return fmt.Errorf("error inserting ticket: %w", err)
	}
	return nil
}

func (s *SqliteStore) Get(ctx context.Context, channelID string) (*entities.Ticket, error) {
	observe := observeStore("sqlite", "get")
	defer observe()

	return s.get(ctx, channelID)
}

func (s *SqliteStore) get(ctx context.Context, channelID string) (*entities.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT channel_id, id, category, opener_id, opener_name, opened_at, claimed_by, claimed_by_name, added_members, message_id
		 FROM tickets WHERE channel_id = ?`, channelID)

	t := new(entities.Ticket)
	var category, added string
	err := row.Scan(&t.ChannelID, &t.ID, &category, &t.OpenerID, &t.OpenerName, &t.OpenedAt,
		&t.ClaimedBy, &t.ClaimedByName, &added, &t.MessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	t.Category = entities.Category(category)
	if err := json.Unmarshal([]byte(added), &t.AddedMembers); err != nil {
		return nil, fmt.Errorf("error decoding added members: %w", err)
	}
	return t, nil
}

func (s *SqliteStore) Update(ctx context.Context, channelID string, mutate Mutator) (*entities.Ticket, error) {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	observe := observeStore("sqlite", "update")
	defer observe()

	t, err := s.get(ctx, channelID)
	if err != nil {
		return nil, err
	}

	updated := t.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	added, err := json.Marshal(updated.AddedMembers)
	if err != nil {
		return nil, fmt.Errorf("error encoding added members: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tickets SET claimed_by = ?, claimed_by_name = ?, added_members = ?, message_id = ? WHERE channel_id = ?`,
		updated.ClaimedBy, updated.ClaimedByName, string(added), updated.MessageID, channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("error updating ticket: %w", err)
	}
	return updated, nil
}

func (s *SqliteStore) Delete(ctx context.Context, channelID string) error {
	unlock := s.locks.Lock(channelID)
	defer unlock()

	observe := observeStore("sqlite", "delete")
	defer observe()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE channel_id = ?`, channelID)
	if err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.locks.Forget(channelID)
	return nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
