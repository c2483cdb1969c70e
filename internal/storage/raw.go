package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// views are canned queries that can stand in for SQL text.
var views = map[string]string{
	"matches": `SELECT id,
		CASE WHEN timestamp > 0 THEN datetime(timestamp / 1000, 'unixepoch') ELSE 'unknown' END AS played,
		player1_char, player1_id, player2_char, player2_id, winner_char, winner_id
		FROM matches ORDER BY MAX(timestamp, 0) DESC, id DESC`,
	"players": `SELECT p.id, p.name, p.main_char, p.rank, p.region,
		(SELECT COUNT(*) FROM matches m WHERE m.player1_id = p.id OR m.player2_id = p.id) AS played,
		(SELECT COUNT(*) FROM matches m WHERE m.winner_id = p.id) AS won
		FROM players p ORDER BY p.name COLLATE NOCASE, p.id`,
	"characters": `SELECT c AS character, COUNT(*) AS played,
		SUM(CASE WHEN winner = c THEN 1 ELSE 0 END) AS won
		FROM (SELECT player1_char AS c, winner_char AS winner FROM matches
		      UNION ALL SELECT player2_char, winner_char FROM matches)
		GROUP BY c ORDER BY played DESC, c`,
}

// ViewNames lists the canned queries accepted by ResolveQuery, sorted.
func ViewNames() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveQuery returns the canned query when q names a view
// (case-insensitive), otherwise q unchanged.
func ResolveQuery(q string) string {
	if v, ok := views[strings.ToLower(strings.TrimSpace(q))]; ok {
		return v
	}
	return q
}

// QueryRaw runs an arbitrary query, or a view named by ResolveQuery, and
// returns the column names and every row rendered as strings. NULL values
// become "NULL".
func (db *DB) QueryRaw(ctx context.Context, query string) ([]string, [][]string, error) {
	rows, err := db.conn.QueryContext(ctx, ResolveQuery(query))
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
