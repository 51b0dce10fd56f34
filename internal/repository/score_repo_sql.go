package repository

import (
	"context"
	"database/sql"
	"regexp"

	"pokeguess/internal/model"
)

const scoreSchema = `
CREATE TABLE IF NOT EXISTS players (
	id         TEXT PRIMARY KEY,
	nickname   TEXT NOT NULL DEFAULT '',
	score      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS players_score_idx ON players (score DESC);
`

// Queries are written with postgres placeholders and rebound for sqlite
const (
	qEnsurePlayer = `
		INSERT INTO players (id, nickname) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname, updated_at = CURRENT_TIMESTAMP`
	qIncrement = `
		INSERT INTO players (id, score) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET score = players.score + EXCLUDED.score, updated_at = CURRENT_TIMESTAMP
		RETURNING score`
	qGetPlayer = `SELECT id, nickname, score, created_at, updated_at FROM players WHERE id = $1`
	qTop       = `SELECT id, nickname, score FROM players ORDER BY score DESC, id ASC LIMIT $1`
	qDelete    = `DELETE FROM players WHERE id = $1`
)

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

type sqlScoreRepo struct {
	db     *sql.DB
	rebind func(string) string
}

// NewPostgresScoreRepo creates a score ledger on a pgx-backed *sql.DB
func NewPostgresScoreRepo(db *sql.DB) ScoreRepo {
	return &sqlScoreRepo{
		db:     db,
		rebind: func(q string) string { return q },
	}
}

// NewSQLiteScoreRepo creates a score ledger on a go-sqlite3 *sql.DB
func NewSQLiteScoreRepo(db *sql.DB) ScoreRepo {
	return &sqlScoreRepo{
		db: db,
		rebind: func(q string) string {
			return pgPlaceholder.ReplaceAllString(q, "?$1")
		},
	}
}

// InitSchema creates the players table if it doesn't exist
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, scoreSchema)
	return err
}

func (r *sqlScoreRepo) EnsurePlayer(ctx context.Context, playerID, nickname string) error {
	_, err := r.db.ExecContext(ctx, r.rebind(qEnsurePlayer), playerID, nickname)
	return err
}

func (r *sqlScoreRepo) Increment(ctx context.Context, playerID string, points int) (int, error) {
	var score int
	if err := r.db.QueryRowContext(ctx, r.rebind(qIncrement), playerID, points).Scan(&score); err != nil {
		return 0, err
	}
	return score, nil
}

func (r *sqlScoreRepo) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	var p model.Player
	err := r.db.QueryRowContext(ctx, r.rebind(qGetPlayer), playerID).
		Scan(&p.ID, &p.Nickname, &p.Score, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqlScoreRepo) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(qTop), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Nickname, &e.Score); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *sqlScoreRepo) Delete(ctx context.Context, playerID string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(qDelete), playerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
