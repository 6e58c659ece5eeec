package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/saltmarshlabs/crossgate/internal/domain/entities"
	"github.com/saltmarshlabs/crossgate/internal/domain/repositories"
	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
)

// AccountRepository implements the AccountRepository interface for PostgreSQL
type AccountRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *sqlx.DB) repositories.AccountRepository {
	return &AccountRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "account")),
	}
}

// accountRow represents an account as stored in the database
type accountRow struct {
	ID         string       `db:"id"`
	Username   string       `db:"username"`
	Email      string       `db:"email"`
	FullName   string       `db:"full_name"`
	System     string       `db:"system"`
	ExternalID string       `db:"external_id"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	LastLogin  sql.NullTime `db:"last_login"`
}

// toEntity converts an accountRow to a domain entity
func (r *accountRow) toEntity() *entities.Account {
	account := &entities.Account{
		ID:         r.ID,
		Username:   r.Username,
		Email:      r.Email,
		FullName:   r.FullName,
		System:     r.System,
		ExternalID: r.ExternalID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.LastLogin.Valid {
		account.LastLogin = &r.LastLogin.Time
	}

	return account
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	start := time.Now()

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = time.Now()

	query := `
		INSERT INTO accounts (id, username, email, full_name, system, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.System,
		account.ExternalID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	metrics.RecordDBOperation("account", "create", time.Since(start), err)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return repositories.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByExternalID retrieves an account by (system, external_id)
func (r *AccountRepository) GetByExternalID(ctx context.Context, system, externalID string) (*entities.Account, error) {
	start := time.Now()

	var row accountRow
	query := `
		SELECT id, username, email, full_name, system, external_id, created_at, updated_at, last_login
		FROM accounts
		WHERE system = $1 AND external_id = $2
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &row, query, system, externalID)
	metrics.RecordDBOperation("account", "get_by_external", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by external id: %w", err)
	}

	return row.toEntity(), nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	start := time.Now()

	var row accountRow
	query := `
		SELECT id, username, email, full_name, system, external_id, created_at, updated_at, last_login
		FROM accounts
		WHERE username = $1
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &row, query, username)
	metrics.RecordDBOperation("account", "get_by_username", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}

	return row.toEntity(), nil
}

// GetByID retrieves an account by its board-local ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	start := time.Now()

	var row accountRow
	query := `
		SELECT id, username, email, full_name, system, external_id, created_at, updated_at, last_login
		FROM accounts
		WHERE id = $1
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &row, query, id)
	metrics.RecordDBOperation("account", "get_by_id", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return row.toEntity(), nil
}

// TouchLastLogin records a successful handoff for the account
func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	start := time.Now()

	query := `UPDATE accounts SET last_login = now(), updated_at = now() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	metrics.RecordDBOperation("account", "touch_last_login", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return repositories.ErrAccountNotFound
	}

	return nil
}
