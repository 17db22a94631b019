package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps knowledge records in a shared PostgreSQL database, for
// users revising the same sets from several machines. Each Put is one
// statement, so committed records survive a crash mid-session.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to url and ensures the knowledge table exists.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// One interactive user; a small pool is plenty.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS revise_knowledge (
			card_key TEXT PRIMARY KEY,
			level    SMALLINT NOT NULL CHECK (level >= 0 AND level <= 3),
			failures SMALLINT NOT NULL CHECK (failures >= 0)
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create knowledge table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key Key) (Record, bool, error) {
	var level, failures int
	err := p.db.QueryRowContext(ctx,
		"SELECT level, failures FROM revise_knowledge WHERE card_key = $1",
		string(key),
	).Scan(&level, &failures)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read knowledge record: %w", err)
	}
	return Record{Level: Level(level), Failures: uint8(failures)}, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key Key, rec Record) error {
	var err error
	if rec.IsZero() {
		_, err = p.db.ExecContext(ctx,
			"DELETE FROM revise_knowledge WHERE card_key = $1", string(key))
	} else {
		_, err = p.db.ExecContext(ctx, `
			INSERT INTO revise_knowledge (card_key, level, failures)
			VALUES ($1, $2, $3)
			ON CONFLICT (card_key) DO UPDATE SET level = $2, failures = $3
		`, string(key), int(rec.Level), int(rec.Failures))
	}
	if err != nil {
		return fmt.Errorf("failed to write knowledge record: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
