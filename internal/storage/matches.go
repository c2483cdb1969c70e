package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pable/tkstats/internal/model"
)

const matchColumns = `id, timestamp, player1_char, player2_char, winner_char, player1_id, player2_id, winner_id`

// InsertMatch stores a match and returns its assigned id. A zero timestamp
// is replaced with the current time.
func (db *DB) InsertMatch(ctx context.Context, m model.Match) (int64, error) {
	if m.Player1Char == "" || m.Player2Char == "" || m.WinnerChar == "" {
		return 0, ErrMissingCharacter
	}
	now := db.now().UnixMilli()
	if m.Timestamp == 0 {
		m.Timestamp = now
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO matches(timestamp, player1_char, player2_char, winner_char, player1_id, player2_id, winner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Timestamp, m.Player1Char, m.Player2Char, m.WinnerChar,
		m.Player1ID, m.Player2ID, m.WinnerID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	db.logger.Debug().Int64("match_id", id).Str("winner", m.WinnerChar).Msg("match stored")
	return id, nil
}

// InsertMatches bulk-inserts matches in one transaction. Either every match
// is stored or none is. Timestamps are kept as given, so legacy records
// without one stay at 0.
func (db *DB) InsertMatches(ctx context.Context, matches []model.Match) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches(timestamp, player1_char, player2_char, winner_char, player1_id, player2_id, winner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := db.now().UnixMilli()
	for i, m := range matches {
		if m.Player1Char == "" || m.Player2Char == "" || m.WinnerChar == "" {
			return 0, fmt.Errorf("match %d: %w", i, ErrMissingCharacter)
		}
		_, err = stmt.ExecContext(ctx,
			m.Timestamp, m.Player1Char, m.Player2Char, m.WinnerChar,
			m.Player1ID, m.Player2ID, m.WinnerID, now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert match %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	db.logger.Debug().Int("count", len(matches)).Msg("matches imported")
	return len(matches), nil
}

// ListMatches returns every stored match, newest first.
func (db *DB) ListMatches(ctx context.Context) ([]model.Match, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches ORDER BY MAX(timestamp, 0) DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMatch returns the match with the given id, or nil if it does not exist.
func (db *DB) GetMatch(ctx context.Context, id int64) (*model.Match, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMatch removes one match. It reports whether a row was deleted.
func (db *DB) DeleteMatch(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearMatches removes every match and returns how many were deleted.
func (db *DB) ClearMatches(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	db.logger.Info().Int64("count", n).Msg("matches cleared")
	return n, nil
}

// CountMatches returns the number of stored matches.
func (db *DB) CountMatches(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM matches`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (model.Match, error) {
	var m model.Match
	err := s.Scan(&m.ID, &m.Timestamp, &m.Player1Char, &m.Player2Char, &m.WinnerChar,
		&m.Player1ID, &m.Player2ID, &m.WinnerID)
	return m, err
}
