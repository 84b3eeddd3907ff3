package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routeopt/internal/model"
)

// Postgres stores solutions as jsonb documents keyed by ID. The schema is
// created on startup so a fresh database works without a migration step.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

// Ping reports database connectivity; readiness checks use it.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) ensureSchema() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS solutions (
		id uuid PRIMARY KEY,
		algorithm text NOT NULL,
		created_at timestamptz NOT NULL,
		payload jsonb NOT NULL
	)`)
	return err
}

func (p *Postgres) SaveSolution(ctx context.Context, sol *model.SolutionResult) error {
	if sol.ID == "" {
		sol.ID = uuid.New().String()
	}
	if sol.CreatedAt.IsZero() {
		sol.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO solutions (id, algorithm, created_at, payload) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET algorithm=$2, payload=$4`,
		sol.ID, sol.Algorithm, sol.CreatedAt, payload)
	return err
}

func (p *Postgres) GetSolution(ctx context.Context, id string) (model.SolutionResult, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM solutions WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionResult{}, ErrNotFound
	}
	if err != nil {
		return model.SolutionResult{}, err
	}
	var sol model.SolutionResult
	if err := json.Unmarshal(payload, &sol); err != nil {
		return model.SolutionResult{}, err
	}
	return sol, nil
}

func (p *Postgres) UpdateSolution(ctx context.Context, sol model.SolutionResult) error {
	payload, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE solutions SET algorithm=$2, payload=$3 WHERE id=$1`,
		sol.ID, sol.Algorithm, payload)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionResult, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, payload FROM solutions WHERE id::text > $1 ORDER BY id::text LIMIT $2`, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, payload FROM solutions ORDER BY id::text LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.SolutionResult{}
	var last string
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, "", err
		}
		var sol model.SolutionResult
		if err := json.Unmarshal(payload, &sol); err != nil {
			return nil, "", err
		}
		out = append(out, sol)
		last = id
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}
