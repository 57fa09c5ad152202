package relay

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfig holds the connection settings for the durable payload
// store.
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresStore persists relay payloads so a host process that is torn
// down mid-flow can recover its result on recreation.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgresStore opens the connection pool and ensures the payload
// table exists.
func OpenPostgresStore(cfg DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password,
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open payload store: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping payload store: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool, for embedders that manage
// their own connections.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS relay_payloads (
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create relay_payloads table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Put stores the payload. A duplicate id is rejected, keeping the
// payload write-once.
func (s *PostgresStore) Put(ctx context.Context, payload Payload) error {
	body, err := payload.Marshal()
	if err != nil {
		return err
	}
	query := `INSERT INTO relay_payloads (id, payload) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, query, payload.ID, body)
	if err != nil {
		return fmt.Errorf("store relay payload: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyStored
	}
	return nil
}

// Consume returns the payload and deletes it in one statement, keeping
// the payload read-once even across concurrent consumers.
func (s *PostgresStore) Consume(ctx context.Context, id string) (Payload, error) {
	query := `DELETE FROM relay_payloads WHERE id = $1 RETURNING payload`
	var body []byte
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return Payload{}, ErrConsumed
		}
		return Payload{}, fmt.Errorf("consume relay payload: %w", err)
	}
	return UnmarshalPayload(body)
}
