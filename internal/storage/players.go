package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pable/tkstats/internal/model"
)

// InsertPlayer registers a player. It returns ErrPlayerExists when the id
// is already taken.
func (db *DB) InsertPlayer(ctx context.Context, p model.Player) (*model.Player, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM players WHERE id = ?`, p.ID).Scan(&count); err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlayerExists, p.ID)
	}

	created := db.now().UTC().Truncate(time.Millisecond)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO players(id, name, main_char, rank, region, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.MainChar, p.Rank, p.Region, created.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	p.CreatedAt = created
	db.logger.Debug().Str("player_id", p.ID).Msg("player registered")
	return &p, nil
}

// GetPlayer returns the player with the given id, or nil if absent.
func (db *DB) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, main_char, rank, region, created_at
		FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlayers returns all players ordered by name.
func (db *DB) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, main_char, rank, region, created_at
		FROM players ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePlayer overwrites the mutable fields of an existing player. It
// reports whether the player existed.
func (db *DB) UpdatePlayer(ctx context.Context, p model.Player) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE players SET name = ?, main_char = ?, rank = ?, region = ?
		WHERE id = ?`,
		p.Name, p.MainChar, p.Rank, p.Region, p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePlayer removes a player. Matches referencing the player keep their
// ids so history is preserved.
func (db *DB) DeletePlayer(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanPlayer(s scanner) (model.Player, error) {
	var p model.Player
	var created int64
	if err := s.Scan(&p.ID, &p.Name, &p.MainChar, &p.Rank, &p.Region, &created); err != nil {
		return p, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	return p, nil
}
