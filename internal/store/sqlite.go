package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS picks (
	id            TEXT PRIMARY KEY,
	created_at    DATETIME NOT NULL,
	player_id     TEXT NOT NULL,
	player_name   TEXT NOT NULL,
	stat_type     TEXT NOT NULL,
	line_value    REAL NOT NULL,
	projected     REAL NOT NULL,
	edge          REAL NOT NULL,
	side          TEXT NOT NULL,
	provider      TEXT NOT NULL,
	game_id       TEXT NOT NULL,
	actual_result REAL,
	won           INTEGER
);

CREATE INDEX IF NOT EXISTS idx_picks_player_id ON picks(player_id);
CREATE INDEX IF NOT EXISTS idx_picks_created_at ON picks(created_at);
CREATE INDEX IF NOT EXISTS idx_picks_won ON picks(won);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LogPick(ctx context.Context, pick Pick) (*Pick, error) {
	pick.ID = uuid.New().String()
	pick.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO picks (
			id, created_at, player_id, player_name, stat_type,
			line_value, projected, edge, side, provider, game_id,
			actual_result, won
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
		pick.ID, pick.CreatedAt, pick.PlayerID, pick.PlayerName, pick.Stat,
		pick.Line, pick.Projected, pick.Edge, pick.Side, pick.Provider, pick.GameID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert pick")
	}
	return &pick, nil
}

func (s *SQLiteStore) GradePick(ctx context.Context, id string, actual float64, won bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE picks SET actual_result = ?, won = ? WHERE id = ?`,
		actual, boolToInt(won), id,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: grade pick")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: grade pick rows")
	}
	if rows == 0 {
		return eris.Errorf("sqlite: no pick with id %s", id)
	}
	return nil
}

func (s *SQLiteStore) ListPicks(ctx context.Context, filter PickFilter) ([]Pick, error) {
	query := `
		SELECT id, created_at, player_id, player_name, stat_type,
		       line_value, projected, edge, side, provider, game_id,
		       actual_result, won
		FROM picks`
	var conds []string
	var args []any
	if filter.PlayerID != "" {
		conds = append(conds, "player_id = ?")
		args = append(args, filter.PlayerID)
	}
	if filter.GradedOnly {
		conds = append(conds, "won IS NOT NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list picks")
	}
	defer rows.Close()

	var picks []Pick
	for rows.Next() {
		var p Pick
		var won sql.NullInt64
		var actual sql.NullFloat64
		if err := rows.Scan(
			&p.ID, &p.CreatedAt, &p.PlayerID, &p.PlayerName, &p.Stat,
			&p.Line, &p.Projected, &p.Edge, &p.Side, &p.Provider, &p.GameID,
			&actual, &won,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pick")
		}
		if actual.Valid {
			v := actual.Float64
			p.ActualResult = &v
		}
		if won.Valid {
			b := won.Int64 != 0
			p.Won = &b
		}
		picks = append(picks, p)
	}
	return picks, eris.Wrap(rows.Err(), "sqlite: list picks rows")
}

func (s *SQLiteStore) WinRate(ctx context.Context) (WinRate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN won = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN won = 0 THEN 1 ELSE 0 END), 0)
		FROM picks
		WHERE won IS NOT NULL`)

	var wr WinRate
	if err := row.Scan(&wr.Graded, &wr.Wins, &wr.Losses); err != nil {
		return WinRate{}, eris.Wrap(err, "sqlite: win rate")
	}
	if wr.Graded > 0 {
		wr.Pct = float64(wr.Wins) / float64(wr.Graded) * 100
	}
	return wr, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
