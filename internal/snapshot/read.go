package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/myurch/mock-rel/internal/ir"
)

// Info describes one stored snapshot.
type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seq       int64  `json:"seq"`
	IRVersion string `json:"ir_version"`
}

// ReadInfo retrieves snapshot metadata by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInfo(ctx context.Context, id string) (Info, error) {
	var info Info
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, seq, ir_version FROM snapshots WHERE id = ?
	`, id).Scan(&info.ID, &info.Name, &info.Seq, &info.IRVersion)
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// ReadSnapshot rebuilds the state stored under id.
// Returns sql.ErrNoRows if no such snapshot exists.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (ir.State, error) {
	if _, err := s.ReadInfo(ctx, id); err != nil {
		return nil, err
	}

	state := ir.State{}

	tables, err := s.db.QueryContext(ctx, `
		SELECT model FROM snapshot_tables WHERE snapshot_id = ?
		ORDER BY model COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query snapshot tables: %w", err)
	}
	defer tables.Close()

	for tables.Next() {
		var model string
		if err := tables.Scan(&model); err != nil {
			return nil, fmt.Errorf("scan snapshot table: %w", err)
		}
		state[model] = ir.Table{}
	}
	if err := tables.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot tables: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, row_key, data FROM snapshot_rows WHERE snapshot_id = ?
		ORDER BY model COLLATE BINARY ASC, row_key COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query snapshot rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var model, key, data string
		if err := rows.Scan(&model, &key, &data); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		// Uses IRObject.UnmarshalJSON, which keeps large integers exact.
		var row ir.Row
		if err := row.UnmarshalJSON([]byte(data)); err != nil {
			return nil, fmt.Errorf("unmarshal %s[%s]: %w", model, key, err)
		}
		if state[model] == nil {
			state[model] = ir.Table{}
		}
		state[model][key] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return state, nil
}

// ListSnapshots returns every stored snapshot in write order.
// Returns an empty slice (not nil) when nothing is stored.
func (s *Store) ListSnapshots(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, seq, ir_version FROM snapshots
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Name, &info.Seq, &info.IRVersion); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return infos, nil
}

// LatestByName returns the most recently written snapshot with the given
// name. Returns sql.ErrNoRows if none exists.
func (s *Store) LatestByName(ctx context.Context, name string) (Info, error) {
	var info Info
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, seq, ir_version FROM snapshots WHERE name = ?
		ORDER BY seq DESC LIMIT 1
	`, name).Scan(&info.ID, &info.Name, &info.Seq, &info.IRVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Info{}, err
		}
		return Info{}, fmt.Errorf("query snapshot %q: %w", name, err)
	}
	return info, nil
}

func sortedModels(state ir.State) []string {
	models := make([]string, 0, len(state))
	for model := range state {
		models = append(models, model)
	}
	slices.Sort(models)
	return models
}
