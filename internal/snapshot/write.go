package snapshot

import (
	"context"
	"fmt"

	"github.com/myurch/mock-rel/internal/ir"
)

// WriteSnapshot stores state under name and returns its id (the state hash).
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing a state that is
// already stored keeps the first name and seq and reports inserted=false.
// A nil state is stored as the empty state.
func (s *Store) WriteSnapshot(ctx context.Context, name string, state ir.State) (id string, inserted bool, err error) {
	if state == nil {
		state = ir.State{}
	}

	id, err = ir.StateHash(state)
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, seq, ir_version)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots), ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, ir.Version)
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if err := tx.Commit(); err != nil {
			return "", false, fmt.Errorf("write snapshot: commit (existing): %w", err)
		}
		return id, false, nil
	}

	for _, model := range sortedModels(state) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_tables (snapshot_id, model) VALUES (?, ?)
		`, id, model); err != nil {
			return "", false, fmt.Errorf("write snapshot: table %s: %w", model, err)
		}

		table := state[model]
		for _, key := range table.Keys() {
			data, err := ir.MarshalCanonical(table[key])
			if err != nil {
				return "", false, fmt.Errorf("write snapshot: marshal %s[%s]: %w", model, key, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO snapshot_rows (snapshot_id, model, row_key, data)
				VALUES (?, ?, ?, ?)
			`, id, model, key, string(data)); err != nil {
				return "", false, fmt.Errorf("write snapshot: row %s[%s]: %w", model, key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("write snapshot: commit: %w", err)
	}

	return id, true, nil
}
