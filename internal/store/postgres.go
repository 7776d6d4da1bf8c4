package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the minimal pool surface used by PostgresStore; pgxmock
// satisfies it in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool creates a store over an existing pool, used by tests.
func NewPostgresFromPool(pool pgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS picks (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL,
	player_id     TEXT NOT NULL,
	player_name   TEXT NOT NULL,
	stat_type     TEXT NOT NULL,
	line_value    DOUBLE PRECISION NOT NULL,
	projected     DOUBLE PRECISION NOT NULL,
	edge          DOUBLE PRECISION NOT NULL,
	side          TEXT NOT NULL,
	provider      TEXT NOT NULL,
	game_id       TEXT NOT NULL,
	actual_result DOUBLE PRECISION,
	won           BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_picks_player_id ON picks(player_id);
CREATE INDEX IF NOT EXISTS idx_picks_created_at ON picks(created_at);
CREATE INDEX IF NOT EXISTS idx_picks_won ON picks(won)`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LogPick(ctx context.Context, pick Pick) (*Pick, error) {
	pick.ID = uuid.New().String()
	pick.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO picks (
			id, created_at, player_id, player_name, stat_type,
			line_value, projected, edge, side, provider, game_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pick.ID, pick.CreatedAt, pick.PlayerID, pick.PlayerName, pick.Stat,
		pick.Line, pick.Projected, pick.Edge, pick.Side, pick.Provider, pick.GameID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert pick")
	}
	return &pick, nil
}

func (s *PostgresStore) GradePick(ctx context.Context, id string, actual float64, won bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE picks SET actual_result = $1, won = $2 WHERE id = $3`,
		actual, won, id,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: grade pick")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: no pick with id %s", id)
	}
	return nil
}

func (s *PostgresStore) ListPicks(ctx context.Context, filter PickFilter) ([]Pick, error) {
	query := `
		SELECT id, created_at, player_id, player_name, stat_type,
		       line_value, projected, edge, side, provider, game_id,
		       actual_result, won
		FROM picks`
	var conds []string
	var args []any
	if filter.PlayerID != "" {
		args = append(args, filter.PlayerID)
		conds = append(conds, "player_id = $1")
	}
	if filter.GradedOnly {
		conds = append(conds, "won IS NOT NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list picks")
	}
	defer rows.Close()

	var picks []Pick
	for rows.Next() {
		var p Pick
		if err := rows.Scan(
			&p.ID, &p.CreatedAt, &p.PlayerID, &p.PlayerName, &p.Stat,
			&p.Line, &p.Projected, &p.Edge, &p.Side, &p.Provider, &p.GameID,
			&p.ActualResult, &p.Won,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pick")
		}
		picks = append(picks, p)
	}
	return picks, eris.Wrap(rows.Err(), "postgres: list picks rows")
}

func (s *PostgresStore) WinRate(ctx context.Context) (WinRate, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN won THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN NOT won THEN 1 ELSE 0 END), 0)
		FROM picks
		WHERE won IS NOT NULL`)

	var wr WinRate
	if err := row.Scan(&wr.Graded, &wr.Wins, &wr.Losses); err != nil {
		return WinRate{}, eris.Wrap(err, "postgres: win rate")
	}
	if wr.Graded > 0 {
		wr.Pct = float64(wr.Wins) / float64(wr.Graded) * 100
	}
	return wr, nil
}
