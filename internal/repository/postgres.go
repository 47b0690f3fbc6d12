package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Config holds database connection settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	HealthTimeout   time.Duration
}

// Postgres is the pgx-backed repository.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *zap.Logger
}

// Open connects to Postgres, verifies the connection, and returns a
// repository.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	timeout := cfg.HealthTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	p := &Postgres{pool: pool, timeout: timeout, logger: logger}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to database", zap.Int32("max_conns", pcfg.MaxConns))
	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping checks that the database answers within the health timeout.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables this service uses when they are missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customer_profiles (
			user_id TEXT NOT NULL,
			salon_id TEXT NOT NULL,
			date_of_birth DATE,
			skin_type TEXT NOT NULL DEFAULT '',
			skin_issues TEXT NOT NULL DEFAULT '',
			allergy_records TEXT NOT NULL DEFAULT '',
			medical_conditions TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			concern_photo_url TEXT NOT NULL DEFAULT '',
			concern_photo_public_id TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, salon_id)
		)`,
		`CREATE TABLE IF NOT EXISTS newsletter_subscribers (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// GetProfile fetches the profile for a user within a salon.
func (p *Postgres) GetProfile(ctx context.Context, userID, salonID string) (*ProfileRecord, error) {
	var r ProfileRecord
	err := p.pool.QueryRow(ctx, `
		SELECT user_id, salon_id, date_of_birth, skin_type, skin_issues, allergy_records,
		       medical_conditions, notes, concern_photo_url, concern_photo_public_id, updated_at
		FROM customer_profiles
		WHERE user_id=$1 AND salon_id=$2
	`, userID, salonID).Scan(
		&r.UserID,
		&r.SalonID,
		&r.DateOfBirth,
		&r.SkinType,
		&r.SkinIssues,
		&r.AllergyRecords,
		&r.MedicalConditions,
		&r.Notes,
		&r.ConcernPhotoURL,
		&r.ConcernPhotoPublicID,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &r, nil
}

// UpsertProfile replaces the stored profile wholesale.
func (p *Postgres) UpsertProfile(ctx context.Context, r *ProfileRecord) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO customer_profiles
			(user_id, salon_id, date_of_birth, skin_type, skin_issues, allergy_records,
			 medical_conditions, notes, concern_photo_url, concern_photo_public_id, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		ON CONFLICT (user_id, salon_id) DO UPDATE SET
			date_of_birth = EXCLUDED.date_of_birth,
			skin_type = EXCLUDED.skin_type,
			skin_issues = EXCLUDED.skin_issues,
			allergy_records = EXCLUDED.allergy_records,
			medical_conditions = EXCLUDED.medical_conditions,
			notes = EXCLUDED.notes,
			concern_photo_url = EXCLUDED.concern_photo_url,
			concern_photo_public_id = EXCLUDED.concern_photo_public_id,
			updated_at = NOW()
		RETURNING updated_at
	`, r.UserID, r.SalonID, r.DateOfBirth, r.SkinType, r.SkinIssues, r.AllergyRecords,
		r.MedicalConditions, r.Notes, r.ConcernPhotoURL, r.ConcernPhotoPublicID,
	).Scan(&r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// Subscribe records a newsletter subscription. A duplicate email yields
// ErrAlreadySubscribed.
func (p *Postgres) Subscribe(ctx context.Context, email string) (*Subscriber, error) {
	s := Subscriber{Email: normalizeEmail(email)}
	err := p.pool.QueryRow(ctx, `
		INSERT INTO newsletter_subscribers (email) VALUES ($1)
		RETURNING id, created_at
	`, s.Email).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("inserting subscriber: %w", err)
	}
	return &s, nil
}

// ListTables returns the table names in the current schema.
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning tables: %w", err)
	}
	return tables, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// normalizeEmail lowercases and trims an address before storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
