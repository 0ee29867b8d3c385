package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
}

// Calculation is a saved run. Input and result are stored as opaque JSON;
// decoding them is the caller's business.
type Calculation struct {
	ID          int
	UserID      int
	Name        string
	Description string
	CreatedAt   time.Time
	InputJSON   []byte
	ResultJSON  []byte
}

type CalculationRepository interface {
	CreateCalculation(ctx context.Context, c Calculation) (Calculation, error)
	GetCalculation(ctx context.Context, userID, id int) (Calculation, error)
	ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error)
	DeleteCalculation(ctx context.Context, userID, id int) error
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS calculations (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	input_json JSONB NOT NULL,
	result_json JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS calculations_user_created_idx ON calculations (user_id, created_at DESC);
`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// EnsureSchema creates the tables on first start.
func (r *PostgresUserRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) CreateCalculation(ctx context.Context, c Calculation) (Calculation, error) {
	query := `INSERT INTO calculations (user_id, name, description, input_json, result_json)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.Description, c.InputJSON, c.ResultJSON).
		Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (r *PostgresUserRepository) GetCalculation(ctx context.Context, userID, id int) (Calculation, error) {
	c := Calculation{UserID: userID}
	query := `SELECT id, name, description, created_at, input_json, result_json
		FROM calculations WHERE id=$1 AND user_id=$2`
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.InputJSON, &c.ResultJSON)
	if err == sql.ErrNoRows {
		return Calculation{}, ErrNotFound
	}
	return c, err
}

// ListCalculations returns the newest runs first without their payloads.
func (r *PostgresUserRepository) ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error) {
	query := `SELECT id, name, description, created_at FROM calculations
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Calculation
	for rows.Next() {
		c := Calculation{UserID: userID}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepository) DeleteCalculation(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calculations WHERE id=$1 AND user_id=$2", id, userID)
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
