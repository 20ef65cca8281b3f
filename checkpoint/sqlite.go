//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS checkpoints (
	checkpoint_id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore persists checkpoints to a single-file SQLite database, per
// spec §6's optional checkpoint schema.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at path
// and ensures the checkpoints table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save implements Store via INSERT OR REPLACE, matching the teacher-original
// upsert-on-checkpoint-id semantics.
func (s *SQLiteStore) Save(ctx context.Context, checkpointID string, state State) error {
	raw, err := marshalState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkpoints (checkpoint_id, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		checkpointID, raw,
	)
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", checkpointID, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, checkpointID string) (State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM checkpoints WHERE checkpoint_id = ?`, checkpointID).Scan(&raw)
	if err == sql.ErrNoRows {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("checkpoint: load %s: %w", checkpointID, err)
	}
	return unmarshalState(raw)
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, checkpointID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE checkpoint_id = ?`, checkpointID)
	if err != nil {
		return fmt.Errorf("checkpoint: delete %s: %w", checkpointID, err)
	}
	return nil
}
