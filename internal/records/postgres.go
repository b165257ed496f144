package records

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"profile-frames/internal/types"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const pgForeignKeyViolation = "23503"

// PostgresStore persists profiles and text records in Postgres
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies the connection
func ConnectPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrator() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, stdlib.OpenDBFromPool(s.pool), fsys)
}

// Migrate applies pending schema migrations
func (s *PostgresStore) Migrate(ctx context.Context) ([]string, error) {
	p, err := s.migrator()
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Path)
	}
	return applied, nil
}

// MigrationStatus reports each known migration and whether it is applied
func (s *PostgresStore) MigrationStatus(ctx context.Context) ([]string, error) {
	p, err := s.migrator()
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, fmt.Sprintf("%-30s %s", st.Source.Path, st.State))
	}
	return out, nil
}

func (s *PostgresStore) Profile(ctx context.Context, username string) (types.Profile, error) {
	var p types.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT username, address FROM profiles WHERE username = $1`,
		types.NormalizeUsername(username),
	).Scan(&p.Username, &p.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Profile{}, ErrNotFound
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) RegisterProfile(ctx context.Context, p types.Profile) error {
	username := types.NormalizeUsername(p.Username)
	addr := types.NormalizeAddress(p.Address)
	if username == "" || addr == "" {
		return fmt.Errorf("register profile: invalid username or address")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (username, address) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET address = EXCLUDED.address`,
		username, addr)
	if err != nil {
		return fmt.Errorf("register profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) TextRecords(ctx context.Context, username string) (types.TextRecords, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.key, r.value
		   FROM profiles p
		   LEFT JOIN text_records r ON r.username = p.username
		  WHERE p.username = $1`,
		types.NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("query text records: %w", err)
	}
	defer rows.Close()

	var (
		out   types.TextRecords
		found bool
	)
	for rows.Next() {
		var key, value *string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan text record: %w", err)
		}
		if !found {
			found = true
			out = make(types.TextRecords)
		}
		if key != nil && value != nil {
			out[types.TextRecordKey(*key)] = *value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate text records: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *PostgresStore) SetTextRecord(ctx context.Context, username string, key types.TextRecordKey, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	username = types.NormalizeUsername(username)
	if value == "" {
		if _, err := s.Profile(ctx, username); err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM text_records WHERE username = $1 AND key = $2`, username, string(key)); err != nil {
			return fmt.Errorf("delete text record: %w", err)
		}
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO text_records (username, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (username, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		username, string(key), value)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set text record: %w", err)
	}
	return nil
}
